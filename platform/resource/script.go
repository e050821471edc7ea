package resource

import "fmt"

// SourceScript is the editable source owned by a Resource.
type SourceScript struct {
	// Name is the logical script name. The compiled module must export an entry type
	// with exactly this name.
	Name string

	// Text is the full source text.
	Text string

	// SourcePath is the file the script was loaded from or last saved to. Empty when
	// the script only lives in memory.
	SourcePath string

	// IsDefaultContent marks built-in template scripts, which never adopt a save path.
	IsDefaultContent bool
}

func (s SourceScript) String() string {
	return fmt.Sprintf("resource.SourceScript{Name: %s, SourcePath: %q, Chars: %d}", s.Name, s.SourcePath, len(s.Text))
}
