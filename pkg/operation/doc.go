/*
Package operation drives a trimming run over a directory or an explicit file list.

	+-------------+     +------------+     +-----------+
	|  discover   | --> | Processor  | --> | Statistics|
	| (candidates)|     | (per file) |     | (results) |
	+-------------+     +-----+------+     +-----------+
	                          |
	        +---------+-------+--------+----------+
	        |         |                |          |
	     binary     text             diff      backup
	    (skip?)   (trim)          (dry run)   (.bak + write)

🔄 Flow per file:
 1. stop early on fail-fast or a cancelled context
 2. skip binary files (CT-0016, never counts as a failure)
 3. enforce max_file_size unless no_limits is set
 4. read, decoding as ISO-8859-1 when the bytes are not valid UTF-8
 5. trim, and when the content changed: render a diff (dry run + diff),
    or back up the original and write the result in its original encoding
 6. append exactly one Result to the Statistics

⚡ The processor is sequential. The candidate list is sorted by discover, so
two runs over the same tree touch the same files in the same order.

Panics inside a single file are recovered and recorded as CT-0090 so one bad
file never aborts the run.

🔍 Example:

	proc, err := operation.NewProcessor(cfg, operation.Options{})
	if err != nil {
		return err
	}
	stats, err := proc.ProcessDirectory(ctx, ".")
*/
package operation
