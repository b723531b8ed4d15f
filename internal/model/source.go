package model

// Path represents a file system path.
type Path string

// TestTarget is the opaque test location handed to the test command.
type TestTarget struct {
	// Path is the test directory or package pattern as given by the caller.
	Path Path
	// WorkDir is the directory the test command runs in.
	WorkDir Path
	// Arg is Path rewritten relative to WorkDir, or as an import path pattern,
	// as passed on the command line.
	Arg string
	// Module is the module path of the artifact, empty outside a module.
	Module string
}
