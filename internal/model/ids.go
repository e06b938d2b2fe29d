package model

// ProjectID, LanguageID and SourceID are stable arena keys. Zero is never a
// valid id for an entity that has been added to a Tree; it is used as the
// "no id" sentinel for optional references (Project.Extends, Source.Unit
// pointers, Source.ReplacedBy).
type ProjectID int32

// LanguageID int32 identifies a Language within a Tree.
type LanguageID int32

// SourceID int32 identifies a Source within a Tree.
type SourceID int32

// Valid reports whether id refers to a real entity (ids start at 1).
func (id ProjectID) Valid() bool { return id != 0 }

// Valid reports whether id refers to a real entity.
func (id LanguageID) Valid() bool { return id != 0 }

// Valid reports whether id refers to a real entity.
func (id SourceID) Valid() bool { return id != 0 }
