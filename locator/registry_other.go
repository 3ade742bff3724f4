//go:build !windows

package locator

// SystemRegistry has no keys off Windows.
type SystemRegistry struct{}

func NewSystemRegistry() Registry {
	return SystemRegistry{}
}

func (SystemRegistry) GetString(root Root, path, name string) (string, error) {
	return "", ErrKeyNotFound
}

func (SystemRegistry) SubKeys(root Root, path string) ([]string, error) {
	return nil, ErrKeyNotFound
}
