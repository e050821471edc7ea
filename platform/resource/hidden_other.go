//go:build !windows

package resource

// There is no hidden file attribute outside Windows.
func setHidden(string, bool) error { return nil }

func isHidden(string) (bool, error) { return false, nil }
