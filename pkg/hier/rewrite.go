package hier

import (
	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
)

// RewriteReferences renames every reference matching opts.Patterns in the
// hierarchy below root, looking the new name up in table. The walk descends
// through the original targets, so the renamed structs need not exist yet.
//
// A matching reference with no entry in table fails with
// ErrCodeMissingRenameEntry. References renamed before the failure keep
// their new names.
func RewriteReferences(lib *gds.Library, root string, table map[string]string, opts Options) error {
	return walk(lib, root, opts, &renamer{table: table})
}

type renamer struct {
	table map[string]string
}

func (r *renamer) element(*gds.Struct, gds.Element) error { return nil }

func (r *renamer) reference(s *gds.Struct, ref *gds.StructRef) error {
	name, ok := r.table[ref.Name]
	if !ok {
		return errors.New(errors.ErrCodeMissingRenameEntry,
			"reference to %q in %q has no rename entry", ref.Name, s.Name).For(ref.Name)
	}
	ref.Name = name
	return nil
}
