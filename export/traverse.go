package export

import "fmt"

const outlineLevel = 1

func (w *sheetWriter) writeHierarchical() error {
	cfg := w.exporter.cfg
	scratch := cfg.DisplayTotals

	for _, root := range w.holder.Roots() {
		start := w.row
		count, err := w.writeSubtree(root, start)
		if err != nil {
			return err
		}
		if scratch {
			if err := w.writeRow(scratchSheet, root, start, false); err != nil {
				return err
			}
		}
		if count > 1 {
			collapsed := cfg.RowGroupsCollapsed
			if w.exporter.collapseRowGroup != nil {
				collapsed = w.exporter.collapseRowGroup(root)
			}
			group := RowGroup{RootRow: start, FirstRow: start + 1, LastRow: start + count - 1, Collapsed: collapsed}
			if err := w.groupRows(group); err != nil {
				return err
			}
			w.report.Groups = append(w.report.Groups, group)
		}
		w.row += count
	}
	return nil
}

// writeSubtree writes root and all of its descendants in depth-first
// pre-order starting at row and returns the number of rows written.
func (w *sheetWriter) writeSubtree(root Item, row int) (int, error) {
	stack := []Item{root}
	count := 0
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := w.writeRow(w.name, item, row+count, true); err != nil {
			return count, err
		}
		count++

		children := w.holder.Children(item)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return count, nil
}

func (w *sheetWriter) groupRows(group RowGroup) error {
	for row := group.FirstRow; row <= group.LastRow; row++ {
		if err := w.file.SetRowOutlineLevel(w.name, row, outlineLevel); err != nil {
			return NewError(KindInternal, fmt.Sprintf("group row %d", row), err)
		}
		if group.Collapsed {
			if err := w.file.SetRowVisible(w.name, row, false); err != nil {
				return NewError(KindInternal, fmt.Sprintf("hide row %d", row), err)
			}
		}
	}
	return nil
}
