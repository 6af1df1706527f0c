package db

import (
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		want    []int
		wantErr bool
	}{
		{
			name: "sorted by version",
			files: fstest.MapFS{
				"sql/0002_second.sql": {Data: []byte("SELECT 2;")},
				"sql/0001_first.sql":  {Data: []byte("SELECT 1;")},
				"sql/README.txt":      {Data: []byte("ignored")},
			},
			want: []int{1, 2},
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"sql/0001_first.sql": {Data: []byte("SELECT 1;")},
				"sql/0001_again.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: true,
		},
		{
			name: "bad prefix",
			files: fstest.MapFS{
				"sql/first_songs.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadMigrations(tt.files)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadMigrations() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("loadMigrations() returned %d migrations, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if m.Version != tt.want[i] {
					t.Errorf("migration[%d].Version = %d, want %d", i, m.Version, tt.want[i])
				}
			}
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := loadMigrations(migrationFiles)
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no embedded migrations found")
	}
	if migrations[0].Name != "0001_create_songs" {
		t.Errorf("first migration = %q, want 0001_create_songs", migrations[0].Name)
	}
}
