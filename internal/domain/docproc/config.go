package docproc

// Config bounds a Processor. Values are fixed at construction and never
// mutated afterwards.
type Config struct {
	// MaxFileSize is the inclusive upper bound on accepted file sizes.
	MaxFileSize int64
	// TextExtractLimit caps the number of characters handed to the
	// summarization model, and sizes the degraded fallback.
	TextExtractLimit int
	// Temperature is passed to both the text and vision models.
	Temperature float64
	TextModel   string
	VisionModel string
	// AllowedExtensions is the lowercase extension allow-set (with dot).
	AllowedExtensions map[string]struct{}
	// AllowedContentTypes maps an extension to the declared content types
	// accepted for it. An extension with no entry (or an empty set) is
	// permissive: no content-type check is performed.
	AllowedContentTypes map[string]map[string]struct{}
}

// DefaultConfig mirrors the limits the assistant has always shipped with.
func DefaultConfig() Config {
	return Config{
		MaxFileSize:      100 * 1024 * 1024,
		TextExtractLimit: 10000,
		Temperature:      0.0,
		AllowedExtensions: map[string]struct{}{
			".pdf":  {},
			".docx": {},
			".txt":  {},
			".jpg":  {},
			".jpeg": {},
			".png":  {},
		},
		AllowedContentTypes: map[string]map[string]struct{}{
			".pdf":  {"application/pdf": {}},
			".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {}},
			".txt":  {"text/plain": {}, "text/csv": {}},
			".jpg":  {"image/jpeg": {}},
			".jpeg": {"image/jpeg": {}},
			".png":  {"image/png": {}},
		},
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = def.MaxFileSize
	}
	if c.TextExtractLimit <= 0 {
		c.TextExtractLimit = def.TextExtractLimit
	}
	if c.AllowedExtensions == nil {
		c.AllowedExtensions = def.AllowedExtensions
	}
	if c.AllowedContentTypes == nil {
		c.AllowedContentTypes = def.AllowedContentTypes
	}
	return c
}
