package source

import (
	"context"
	"strings"
)

// Reader supplies raw transcript text for a reference such as a path or URL.
// A missing source should satisfy errors.Is(err, fs.ErrNotExist).
type Reader interface {
	Read(ctx context.Context, ref string) (string, error)
}

// Mux sends http:// and https:// refs to HTTP and everything else to Files.
type Mux struct {
	Files Reader
	HTTP  Reader
}

func (m Mux) Read(ctx context.Context, ref string) (string, error) {
	if IsURL(ref) && m.HTTP != nil {
		return m.HTTP.Read(ctx, ref)
	}
	if m.Files == nil {
		return FileReader{}.Read(ctx, ref)
	}
	return m.Files.Read(ctx, ref)
}

func IsURL(ref string) bool {
	l := strings.ToLower(ref)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
