package parser

const (
	// FileExtension is the extension of declaration files
	FileExtension = ".defn"

	// HeaderSuffix is appended to the base name of a declaration file to name its header
	HeaderSuffix = ".defn.hpp"
)
