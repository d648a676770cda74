package users

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/stockpile-ims/stockpile/internal/platform/flatfile"
)

// UsersFile is the catalog's file name under the data directory.
const UsersFile = "users.csv"

const usersHeader = "username,passwordHash,role"

// Load replaces the in-memory catalog with the contents of users.csv.
func (s *Service) Load(ctx context.Context, dataDir string) error {
	table := flatfile.NewTable(filepath.Join(dataDir, UsersFile), usersHeader, s.logger)
	records, err := table.Load(ctx)
	if err != nil {
		s.users = make(map[string]User)
		return err
	}
	loaded := make(map[string]User, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			s.logger.Warn("skipping malformed user row", slog.Int("fields", len(rec)))
			continue
		}
		u := User{
			Username:     flatfile.Unescape(rec[0]),
			PasswordHash: flatfile.Unescape(rec[1]),
			Role:         flatfile.Unescape(rec[2]),
		}
		loaded[u.Username] = u
	}
	s.users = loaded
	s.logger.Info("users loaded", slog.Int("count", len(loaded)))
	return nil
}

// Save rewrites users.csv from the in-memory catalog.
func (s *Service) Save(ctx context.Context, dataDir string) error {
	table := flatfile.NewTable(filepath.Join(dataDir, UsersFile), usersHeader, s.logger)
	all := s.All(ctx)
	records := make([][]string, 0, len(all))
	for _, u := range all {
		records = append(records, []string{u.Username, u.PasswordHash, u.Role})
	}
	if err := table.Save(ctx, records); err != nil {
		return err
	}
	s.logger.Info("users saved", slog.Int("count", len(records)))
	return nil
}
