package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Watch Errors (E001-E099)
	// ============================================

	"E001": {
		Category:   CategoryWatch,
		Message:    "Watch root is not accessible",
		Detail:     "The directory could not be read. It may have been removed or you may lack permission. The path is dropped from the watch set; other roots continue to be watched.",
		Suggestion: "Check that the directory exists and is readable.",
		DocURL:     "https://pohlang.org/docs/errors/E001",
	},
	"E002": {
		Category:   CategoryWatch,
		Message:    "Native file notifications unavailable",
		Detail:     "The OS notification backend could not be initialized. The watcher falls back to interval polling.",
		Suggestion: "Polling is slower but functionally equivalent. No action required.",
		DocURL:     "https://pohlang.org/docs/errors/E002",
	},
	"E003": {
		Category: CategoryWatch,
		Message:  "Invalid watch pattern",
		Detail:   "An include or exclude glob in plhub.json is malformed.",
		DocURL:   "https://pohlang.org/docs/errors/E003",
	},

	// ============================================
	// Cache Errors (E100-E109)
	// ============================================

	"E101": {
		Category:   CategoryCache,
		Message:    "Build cache is corrupt or unreadable",
		Detail:     "The cache file could not be parsed. A fresh cache is used, which forces a full rebuild on the next build.",
		Suggestion: "Run 'plhub clean' to remove the cache file if this persists.",
		DocURL:     "https://pohlang.org/docs/errors/E101",
	},
	"E102": {
		Category:   CategoryCache,
		Message:    "Dependency cycle detected",
		Detail:     "The import graph contains a cycle. Incremental traversal is not safe, so the entire project is rebuilt.",
		Suggestion: "Break the import cycle between the reported files.",
		DocURL:     "https://pohlang.org/docs/errors/E102",
	},
	"E103": {
		Category: CategoryCache,
		Message:  "Failed to persist build cache",
		Detail:   "The cache file could not be written. Incremental state will be lost on restart.",
		DocURL:   "https://pohlang.org/docs/errors/E103",
	},
	"E104": {
		Category:   CategoryCache,
		Message:    "Build cache version mismatch",
		Detail:     "The cache was written by an incompatible plhub version and is discarded.",
		Suggestion: "No action required. The next build repopulates the cache.",
		DocURL:     "https://pohlang.org/docs/errors/E104",
	},

	// ============================================
	// Build Errors (E110-E199)
	// ============================================

	"E110": {
		Category:   CategoryBuild,
		Message:    "PohLang compiler not found",
		Detail:     "The pohc binary was not found in the configured path, the project toolchain directory, or PATH.",
		Suggestion: "Install the PohLang toolchain or set build.compiler in plhub.json.",
		DocURL:     "https://pohlang.org/docs/errors/E110",
	},
	"E111": {
		Category: CategoryBuild,
		Message:  "Compilation failed",
		Detail:   "The compiler reported errors for one or more files. See the diagnostics in the build result.",
		DocURL:   "https://pohlang.org/docs/errors/E111",
	},
	"E112": {
		Category: CategoryBuild,
		Message:  "Source file unreadable",
		Detail:   "A file in the rebuild set could not be read for hashing or import parsing.",
		DocURL:   "https://pohlang.org/docs/errors/E112",
	},

	// ============================================
	// Reload / Protocol Errors (E200-E299)
	// ============================================

	"E201": {
		Category:   CategoryProtocol,
		Message:    "Client handshake timeout",
		Detail:     "A client connected but did not send a Hello message within the handshake window. The session is dropped.",
		Suggestion: "Check that the client runner speaks the plhub reload protocol.",
		DocURL:     "https://pohlang.org/docs/errors/E201",
	},
	"E202": {
		Category: CategoryReload,
		Message:  "Client acknowledgement timeout",
		Detail:   "A client did not acknowledge a reload message in time. The session is kept but marked degraded.",
		DocURL:   "https://pohlang.org/docs/errors/E202",
	},
	"E203": {
		Category: CategoryProtocol,
		Message:  "Malformed client message",
		Detail:   "A client sent a frame that could not be decoded as a protocol message.",
		DocURL:   "https://pohlang.org/docs/errors/E203",
	},

	// ============================================
	// Config / CLI Errors (E300-E399)
	// ============================================

	"E301": {
		Category:   CategoryConfig,
		Message:    "Project configuration not found",
		Detail:     "No plhub.json was found in the current directory or any parent.",
		Suggestion: "Run plhub from inside a PohLang project, or create a plhub.json.",
		DocURL:     "https://pohlang.org/docs/errors/E301",
	},
	"E302": {
		Category: CategoryConfig,
		Message:  "Invalid project configuration",
		Detail:   "plhub.json could not be parsed or contains invalid values.",
		DocURL:   "https://pohlang.org/docs/errors/E302",
	},
	"E303": {
		Category:   CategoryConfig,
		Message:    "Invalid project name",
		Detail:     "Project names use lowercase letters, digits, hyphens, and underscores.",
		Suggestion: "Pick a name like 'my-app'.",
		DocURL:     "https://pohlang.org/docs/errors/E303",
	},
	"E304": {
		Category:   CategoryConfig,
		Message:    "Project directory already exists",
		Suggestion: "Choose a different name or remove the existing directory.",
		DocURL:     "https://pohlang.org/docs/errors/E304",
	},
	"E305": {
		Category: CategoryConfig,
		Message:  "Unknown project template",
		Detail:   "Available templates are basic, console, and web.",
		DocURL:   "https://pohlang.org/docs/errors/E305",
	},
}
