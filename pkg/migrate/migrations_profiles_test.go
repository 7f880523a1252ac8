package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProfilesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_profiles.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no profiles migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS profiles",
		"user_id UUID PRIMARY KEY",
		"CREATE TABLE IF NOT EXISTS student_profiles",
		"CONSTRAINT uq_student_profiles_user_id UNIQUE (user_id)",
		"CREATE TABLE IF NOT EXISTS staff_profiles",
		"CONSTRAINT uq_staff_profiles_user_id UNIQUE (user_id)",
		"FOREIGN KEY (user_id) REFERENCES auth_identities(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS profiles",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestNotificationsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_student_notifications.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no notifications migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS student_notifications",
		"FOREIGN KEY (student_id) REFERENCES auth_identities(id) ON DELETE CASCADE",
		"CONSTRAINT chk_notification_type",
		"DROP TABLE IF EXISTS student_notifications",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
