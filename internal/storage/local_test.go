package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorageSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	ref, err := local.Save("fachada.jpg", strings.NewReader("imagen"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(ref, "/fachada.jpg") {
		t.Fatalf("ref = %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(dir, "fachada.jpg"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "imagen" {
		t.Fatalf("file content = %q", data)
	}

	// Same filename overwrites.
	_, err = local.Save("fachada.jpg", strings.NewReader("otra"))
	if err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "fachada.jpg"))
	if string(data) != "otra" {
		t.Fatalf("overwrite content = %q", data)
	}

	err = local.Delete(ref)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = os.Stat(filepath.Join(dir, "fachada.jpg"))
	if !os.IsNotExist(err) {
		t.Fatalf("file still exists after delete: %v", err)
	}

	// Deleting a missing file is not an error.
	err = local.Delete(ref)
	if err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

// Delete must not escape the upload directory via a crafted reference.
func TestLocalStorageDeleteUsesBasename(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalStorage(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	outside := filepath.Join(dir, "fuera.txt")
	err = os.WriteFile(outside, []byte("x"), 0644)
	if err != nil {
		t.Fatalf("write outside file: %v", err)
	}

	err = local.Delete("../fuera.txt")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = os.Stat(outside)
	if err != nil {
		t.Fatal("delete escaped the upload directory")
	}
}
