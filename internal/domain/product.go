package domain

// Category is the primary classification of a catalog product
type Category string

const (
	CategoryPOS         Category = "pos"
	CategoryPeripheral  Category = "peripheral"
	CategoryMobile      Category = "mobile"
	CategorySelfService Category = "selfservice"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryPOS, CategoryPeripheral, CategoryMobile, CategorySelfService:
		return true
	}
	return false
}

// Size is the physical footprint of a device
type Size string

const (
	SizeCompact  Size = "compact"
	SizeStandard Size = "standard"
	SizeLarge    Size = "large"
)

// Valid reports whether s is one of the known sizes
func (s Size) Valid() bool {
	switch s {
	case SizeCompact, SizeStandard, SizeLarge:
		return true
	}
	return false
}

// SearchTerms is matching metadata; it is never rendered as a single blob
type SearchTerms struct {
	BusinessTypes []string `json:"businessTypes" yaml:"businessTypes"`
	UseCase       []string `json:"useCase" yaml:"useCase"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
}

// PaymentTypes lists the payment methods a device accepts
type PaymentTypes struct {
	Swipe         bool `json:"swipe" yaml:"swipe"`
	Chip          bool `json:"chip" yaml:"chip"`
	Contactless   bool `json:"contactless" yaml:"contactless"`
	DigitalWallet bool `json:"digitalWallet" yaml:"digitalWallet"`
}

// CallToAction is presentation data passed through to the UI unchanged
type CallToAction struct {
	Text string `json:"text" yaml:"text"`
	Link string `json:"link" yaml:"link"`
}

// Product is a sellable POS system or accessory
type Product struct {
	Identifier            string       `json:"identifier" yaml:"identifier"`
	Name                  string       `json:"name" yaml:"name"`
	PrimaryCategory       Category     `json:"primaryCategory" yaml:"primaryCategory"`
	Size                  Size         `json:"size" yaml:"size"`
	BestFor               []string     `json:"bestFor" yaml:"bestFor"`
	Features              []string     `json:"features" yaml:"features"`
	SearchTerms           SearchTerms  `json:"searchTerms" yaml:"searchTerms"`
	PaymentTypes          PaymentTypes `json:"paymentTypes" yaml:"paymentTypes"`
	ComplementaryProducts []string     `json:"complementaryProducts" yaml:"complementaryProducts"`
	Image                 string       `json:"image" yaml:"image"`
	CTA                   CallToAction `json:"cta" yaml:"cta"`
}

// Clone returns a deep copy so callers cannot reach shared slices
func (p Product) Clone() Product {
	out := p
	out.BestFor = cloneStrings(p.BestFor)
	out.Features = cloneStrings(p.Features)
	out.SearchTerms = SearchTerms{
		BusinessTypes: cloneStrings(p.SearchTerms.BusinessTypes),
		UseCase:       cloneStrings(p.SearchTerms.UseCase),
		Keywords:      cloneStrings(p.SearchTerms.Keywords),
	}
	out.ComplementaryProducts = cloneStrings(p.ComplementaryProducts)
	return out
}

// IsComplete reports whether the product carries enough data to be shown
// as a remote recommendation: a name and at least one feature.
func (p Product) IsComplete() bool {
	return p.Name != "" && len(p.Features) > 0
}

// Projection returns the compact view of the product sent to the classifier
func (p Product) Projection() ProjectionEntry {
	return ProjectionEntry{
		Identifier:      p.Identifier,
		Name:            p.Name,
		BestFor:         cloneStrings(p.BestFor),
		BusinessTypes:   cloneStrings(p.SearchTerms.BusinessTypes),
		UseCase:         cloneStrings(p.SearchTerms.UseCase),
		PrimaryCategory: p.PrimaryCategory,
		Size:            p.Size,
	}
}

// ProjectionEntry is the catalog context given to the classification service
type ProjectionEntry struct {
	Identifier      string   `json:"identifier"`
	Name            string   `json:"name"`
	BestFor         []string `json:"bestFor"`
	BusinessTypes   []string `json:"businessTypes"`
	UseCase         []string `json:"useCase"`
	PrimaryCategory Category `json:"primaryCategory"`
	Size            Size     `json:"size"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
