package script

const (
	// ============================================================================
	// Lexical Tokens
	// ============================================================================

	// CommentPrefix starts a comment that runs to the end of the line
	CommentPrefix = "#"

	// OptionSeparator splits key=value options such as align=0x1000
	OptionSeparator = "="

	// CR is stripped from line ends so CRLF scripts parse
	CR = "\r"

	// ============================================================================
	// Byte Order Marks
	// ============================================================================

	// UTF8BOM is skipped at the start of a script
	UTF8BOM = "\xef\xbb\xbf"

	// ============================================================================
	// Input Encodings
	// ============================================================================

	// EncodingUTF8 is the default script encoding
	EncodingUTF8 = "UTF-8"

	// EncodingLatin1 is ISO 8859-1, common for scripts written by older testbenches
	EncodingLatin1 = "LATIN1"

	// EncodingWindows1252 is the Windows western code page
	EncodingWindows1252 = "WINDOWS-1252"

	// ============================================================================
	// Options and Flags
	// ============================================================================

	// OptAlign sets the alignment of root, alloc and file
	OptAlign = "align"

	// OptExpect makes a read fail unless it returns the given value
	OptExpect = "expect"

	// FlagLazy makes a root region lazily committed
	FlagLazy = "lazy"

	// FlagRW maps a file writable
	FlagRW = "rw"

	// FlagFail marks a command that must fail
	FlagFail = "fail"

	// DefaultAlign is used when no align= option is given
	DefaultAlign = 1

	// ============================================================================
	// Scanner Limits
	// ============================================================================

	// ScannerInitialBufferSize is the initial line buffer
	ScannerInitialBufferSize = 64 * 1024

	// ScannerMaxLineSize bounds a single line
	ScannerMaxLineSize = 1024 * 1024
)
