package codec

import "path/filepath"

// Path is a filesystem path. It is stored with forward slashes so that an
// encoding made on one platform decodes to a native path on another.
type Path string

// String returns the path with the platform's separators.
func (p Path) String() string {
	return string(p)
}

type pathCodec struct{}

func (pathCodec) MinSize() int { return lengthPrefixSize }

func (pathCodec) Size(_ *Registry, p Path) (int, error) {
	return lengthPrefixSize + len(filepath.ToSlash(string(p))), nil
}

func (pathCodec) Encode(w *Writer, p Path) error {
	return w.PutString(filepath.ToSlash(string(p)))
}

func (pathCodec) Decode(r *Reader) (Path, error) {
	s, err := r.ReadString()
	if err != nil {
		return "", err
	}

	return Path(filepath.FromSlash(s)), nil
}
