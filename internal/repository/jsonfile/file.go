// Package jsonfile реализует хранилища на плоских JSON-файлах.
//
// Каждая мутация читает весь массив, изменяет его и переписывает файл целиком
// через временный файл и rename, поэтому сбой записи оставляет прежнее содержимое.
// Внутри процесса мутации одного хранилища сериализуются его мьютексом.
// Два процесса, работающие с одними файлами, по-прежнему гоняются:
// побеждает последний rename, чужая запись теряется без ошибки.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FilePermissions права создаваемых файлов данных
const FilePermissions = 0644

// Имена файлов внутри каталога данных
const (
	ReservationsFile = "reservations.json"
	FixedSlotsFile   = "fixed_slots.json"
	SequenceSuffix   = ".seq"
)

// ensureFile создаёт файл с пустым массивом, если его нет
func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return writeFileAtomic(path, []byte("[]"))
}

// readArray читает JSON-массив из файла; отсутствующий или пустой файл = пустой массив
func readArray(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// writeArray сериализует массив с отступом в два пробела и атомарно заменяет файл
func writeArray(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic пишет во временный файл рядом с целевым и переименовывает его
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(FilePermissions); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// readSequence читает последний выданный id; отсутствующий файл = 0
func readSequence(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}

	seq, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return seq, nil
}

func writeSequence(path string, seq int64) error {
	return writeFileAtomic(path, []byte(strconv.FormatInt(seq, 10)+"\n"))
}

// flexInt число, которое в старых файлах могло быть записано строкой ("2025")
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" {
		return fmt.Errorf("empty number")
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", text, err)
	}
	*n = flexInt(value)
	return nil
}
