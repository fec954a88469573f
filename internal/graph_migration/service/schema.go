package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

type SchemaResult struct {
	Path     string `json:"path"`
	Skipped  bool   `json:"skipped"`
	Executed int    `json:"executed"`
	Failed   int    `json:"failed"`
}

// SplitStatements splits a semicolon-delimited script, dropping blanks.
func SplitStatements(content string) []string {
	var out []string
	for _, part := range strings.Split(content, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// SetupSchema runs the statements of a schema file in file order. A missing
// file is skipped; a failing statement is logged and the rest still run.
func (l *Loader) SetupSchema(ctx context.Context, path string) (SchemaResult, error) {
	res := SchemaResult{Path: path}
	if strings.TrimSpace(path) == "" {
		res.Skipped = true
		return res, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Warn("schema file not found, skipping schema setup", "path", path)
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read schema file: %w", err)
	}

	for _, stmt := range SplitStatements(string(content)) {
		if _, err := l.graph.Run(ctx, stmt, nil); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed++
			l.log.Warn("schema statement failed (continuing)", "statement", preview(stmt, 100), "error", err)
			continue
		}
		res.Executed++
		l.log.Info("schema statement executed", "statement", preview(stmt, 50))
	}
	return res, nil
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
