// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 🗄️ RunRecord is one row per run
type RunRecord struct {
	RunID             string    `gorm:"primaryKey"`
	Timestamp         time.Time `gorm:"not null"`
	Root              string
	DryRun            bool
	FilesProcessed    int
	FilesModified     int
	FilesSkipped      int
	FilesErrored      int
	BytesTrimmed      int64
	LinesTrimmed      int
	BlankLinesRemoved int
	ExecutionTimeMs   float64
	Files             []FileRecord `gorm:"foreignKey:RunID;references:RunID"`
}

func (RunRecord) TableName() string {
	return "processing_runs"
}

// 🗄️ FileRecord is one row per processed file
type FileRecord struct {
	ID               int64  `gorm:"primaryKey"`
	RunID            string `gorm:"index;not null"`
	FilePath         string `gorm:"not null"`
	WasModified      bool
	BytesModified    int
	ErrorCode        string
	ErrorMessage     string
	BackupPath       string
	ProcessingTimeMs float64
}

func (FileRecord) TableName() string {
	return "file_results"
}

// OpenDatabase opens (creating if needed) the report database at path
func OpenDatabase(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Errorf("creating database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(&RunRecord{}, &FileRecord{}); err != nil {
		return nil, errors.Errorf("migrating schema: %w", err)
	}
	return db, nil
}

// 💾 WriteSQLite appends the run and its file results to the database at path
func WriteSQLite(ctx context.Context, doc Document, path string) error {
	db, err := OpenDatabase(path)
	if err != nil {
		return trimerr.Wrap(trimerr.DatabaseFailed, err, "Check database permissions and disk space")
	}
	defer closeDatabase(ctx, db)

	run := RunRecord{
		RunID:             doc.RunID,
		Timestamp:         doc.Timestamp,
		Root:              doc.Root,
		DryRun:            doc.DryRun,
		FilesProcessed:    doc.FilesProcessed,
		FilesModified:     doc.FilesModified,
		FilesSkipped:      doc.FilesSkipped,
		FilesErrored:      doc.FilesErrored,
		BytesTrimmed:      doc.BytesTrimmed,
		LinesTrimmed:      doc.LinesTrimmed,
		BlankLinesRemoved: doc.BlankLinesRemoved,
		ExecutionTimeMs:   doc.ExecutionTimeMs,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Files").Create(&run).Error; err != nil {
			return errors.Errorf("inserting run: %w", err)
		}
		if len(doc.Results) == 0 {
			return nil
		}
		files := make([]FileRecord, 0, len(doc.Results))
		for _, r := range doc.Results {
			files = append(files, FileRecord{
				RunID:            doc.RunID,
				FilePath:         r.FilePath,
				WasModified:      r.WasModified,
				BytesModified:    r.BytesModified,
				ErrorCode:        r.ErrorCode,
				ErrorMessage:     r.ErrorMessage,
				BackupPath:       r.BackupPath,
				ProcessingTimeMs: r.ProcessingTimeMs,
			})
		}
		if err := tx.Create(&files).Error; err != nil {
			return errors.Errorf("inserting file results: %w", err)
		}
		return nil
	})
	if err != nil {
		return trimerr.Wrap(trimerr.DatabaseFailed, err, "Check database permissions and disk space")
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("run_id", doc.RunID).Int("files", len(doc.Results)).Msg("saved run to database")
	return nil
}

func closeDatabase(ctx context.Context, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("closing database")
	}
}
