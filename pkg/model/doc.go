// Package model defines the form definition consumed by the editor, the
// validation engine and every renderer. A Field carries its palette type, the
// attributes edited through the configuration panel and the step (page) it
// belongs to; a Document is the ordered field collection plus its name and is
// the unit that gets persisted. JSON tags mirror the stored record shape
// exactly (`minLength`/`maxLength` are string-encoded) so documents written by
// earlier builds keep loading. Per-type behaviour goes through Visitor, which
// turns the closed FieldType set into a compile-time checked dispatch.
package model
