// Package migration applies versioned SQL schema changes to a SQLite database.
//
// Migration files are read from an fs.FS (normally an embed.FS compiled into
// the binary) and must be named {version}_{description}.sql, for example
// "001_create_users.sql". Versions form a gap-free sequence starting anywhere.
//
// Each migration runs in its own transaction together with the row recording
// it in schema_migrations, so a failed file leaves neither schema changes nor
// a version entry behind. The checksum of every applied file is stored and a
// file edited after it was applied stops the run with ErrChecksumMismatch.
//
// Example usage:
//
//	manager := migration.NewMigrationManager(
//		migration.NewFileScanner(),
//		migration.NewSQLiteExecutor(db),
//		schemaFS, "migrations", logger,
//	)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
