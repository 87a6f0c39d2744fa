package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

func requireFile(dir, name string) error {
	fi, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("%s not found", name)
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file", name)
	}
	return nil
}

func requireDir(dir, name string) error {
	fi, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("%s/ not found", name)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is a file, expected a directory", name)
	}
	return nil
}
