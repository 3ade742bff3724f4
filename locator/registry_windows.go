//go:build windows

package locator

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// SystemRegistry reads the Windows registry.
type SystemRegistry struct{}

func NewSystemRegistry() Registry {
	return SystemRegistry{}
}

func hive(root Root) registry.Key {
	if root == LocalMachine {
		return registry.LOCAL_MACHINE
	}
	return registry.CURRENT_USER
}

func (SystemRegistry) GetString(root Root, path, name string) (string, error) {
	key, err := registry.OpenKey(hive(root), path, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("%s\\%s: %w", root, path, ErrKeyNotFound)
	}
	defer key.Close()

	value, _, err := key.GetStringValue(name)
	if err != nil {
		return "", fmt.Errorf("%s\\%s[%s]: %w", root, path, name, ErrKeyNotFound)
	}
	return value, nil
}

func (SystemRegistry) SubKeys(root Root, path string) ([]string, error) {
	key, err := registry.OpenKey(hive(root), path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, fmt.Errorf("%s\\%s: %w", root, path, ErrKeyNotFound)
	}
	defer key.Close()

	return key.ReadSubKeyNames(-1)
}
