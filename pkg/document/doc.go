// Package document holds the form being edited: an ordered field sequence, a
// name and the editor selection. Mutations notify registered observers with a
// copy of the resulting document, which is how autosave learns about edits.
package document
