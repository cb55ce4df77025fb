package platform

// TextSpec describes how a platform shapes its caption variant.
type TextSpec struct {
	Prefix    string
	Suffix    string
	MaxLength int // runes; 0 means unlimited
}

const truncationMarker = '…'

// BuildText composes the platform text variant: prefix and suffix
// wrapping, then rune-safe truncation at MaxLength-1 plus a single
// truncation marker when the composed text exceeds the limit.
func BuildText(spec TextSpec, caption string) string {
	text := spec.Prefix + caption + spec.Suffix
	if spec.MaxLength <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= spec.MaxLength {
		return text
	}
	return string(append(runes[:spec.MaxLength-1], truncationMarker))
}
