/*
Package config manages configuration loading, layering and validation for codetrim.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|  YAML   |   |  JSON   |   |   HCL   |
	| Parser  |   | Parser  |   | Parser  |
	+---------+   +---------+   +---------+

🎯 Purpose:
- Reads .codetrim.{yaml,yml,json,hcl} files through a parser registry
- Layers defaults, file, CODETRIM_* environment and CLI flags (Resolve)
- Validates limits and custom rules before any file is touched

🔄 Precedence (highest first):
 1. CLI flags that were explicitly set
 2. CODETRIM_* environment variables
 3. Config file
 4. Built-in defaults

YAML and JSON files may nest every key under a top-level "codetrim" key and may
spell keys with hyphens ("max-files") or underscores ("max_files").

Example:

	include: "*.{go,py}"
	max_consecutive_blank_lines: 1
	rules:
	  - name: tabs
	    pattern: "\t"
	    replacement: "    "
*/
package config
