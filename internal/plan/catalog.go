package plan

import "strings"

// Canonical plan IDs.
const (
	Free = "free"
	Pro  = "pro"
	Don  = "don"
)

// Plan status values stored on the user.
const (
	StatusActive   = "active"
	StatusExpired  = "expired"
	StatusCanceled = "canceled"
)

// Limits are the per-plan feature switches enforced across the API and the
// link guardian. A nil MaxProducts means no cap.
type Limits struct {
	MaxProducts     *int   `json:"max_products"`
	AutoIngest      bool   `json:"auto_ingest"`
	LinkGuardian    bool   `json:"link_guardian"`
	FeaturedAllowed bool   `json:"featured_allowed"`
	CustomDomain    bool   `json:"custom_domain"`
	Themes          int    `json:"themes"`
	Support         string `json:"support"`
}

// Plan is one entry of the plan catalog, the single source of truth for
// pricing, duration and limits.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Badge        string   `json:"badge"`
	Highlight    bool     `json:"highlight"`
	PriceCents   int64    `json:"price_brl_cents"`
	DurationDays int      `json:"duration_days"`
	Sellable     bool     `json:"is_sellable"`
	Limits       Limits   `json:"limits"`
	Features     []string `json:"features"`
}

// View is the public catalog shape served to pricing pages and the checkout UI.
type View struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Badge        string   `json:"badge"`
	Highlight    bool     `json:"highlight"`
	PriceCents   int64    `json:"price_brl_cents"`
	PriceBRL     float64  `json:"price_brl"`
	DurationDays int      `json:"duration_days"`
	Sellable     bool     `json:"is_sellable"`
	Limits       Limits   `json:"limits"`
	Features     []string `json:"features"`
}

func intPtr(n int) *int { return &n }

// catalog is keyed by plan ID; ordering for UI lives in order below.
var catalog = map[string]Plan{
	Free: {
		ID:           Free,
		Name:         "FREE",
		Badge:        "Padrão",
		PriceCents:   0,
		DurationDays: 0,
		Sellable:     false,
		Limits: Limits{
			MaxProducts:     intPtr(3),
			AutoIngest:      false,
			LinkGuardian:    false,
			FeaturedAllowed: false,
			CustomDomain:    false,
			Themes:          1,
			Support:         "community",
		},
		Features: []string{
			"Até 3 produtos na vitrine",
			"Links profissionais (básico)",
			"Sem ingestão automática do Mercado Livre",
			"Suporte comunitário",
		},
	},
	Pro: {
		ID:           Pro,
		Name:         "PRO",
		Badge:        "Mais vendido",
		Highlight:    true,
		PriceCents:   1990,
		DurationDays: 30,
		Sellable:     true,
		Limits: Limits{
			MaxProducts:     intPtr(20),
			AutoIngest:      true,
			LinkGuardian:    true,
			FeaturedAllowed: true,
			CustomDomain:    false,
			Themes:          3,
			Support:         "priority",
		},
		Features: []string{
			"Até 20 produtos na vitrine",
			"Ingestão automática do Mercado Livre",
			"Link Guardian (links monitorados)",
			"Destaque em vitrine (prioridade)",
			"3 temas/skins",
			"Suporte prioritário",
		},
	},
	Don: {
		ID:           Don,
		Name:         "DON",
		Badge:        "Ultra Premium",
		PriceCents:   4990,
		DurationDays: 30,
		Sellable:     true,
		Limits: Limits{
			MaxProducts:     nil,
			AutoIngest:      true,
			LinkGuardian:    true,
			FeaturedAllowed: true,
			CustomDomain:    true,
			Themes:          10,
			Support:         "vip",
		},
		Features: []string{
			"Produtos ilimitados na vitrine",
			"Ingestão automática do Mercado Livre",
			"Link Guardian (links monitorados)",
			"Destaque máximo (homepage / vitrine premium)",
			"Domínio próprio (quando ativarmos)",
			"10 temas/skins",
			"Suporte VIP",
		},
	},
}

var order = []string{Free, Pro, Don}

// Normalize lowercases and trims a plan name, mapping anything unknown to Free.
func Normalize(name string) string {
	p := strings.ToLower(strings.TrimSpace(name))
	if _, ok := catalog[p]; ok {
		return p
	}
	return Free
}

// Known reports whether name is an existing plan ID after normalization of
// case and whitespace. Unlike Normalize it does not fall back to Free.
func Known(name string) bool {
	_, ok := catalog[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Get returns the catalog entry for name, falling back to Free for unknown
// names.
func Get(name string) Plan {
	return catalog[Normalize(name)]
}

// All returns the catalog in fixed UI order.
func All() []Plan {
	out := make([]Plan, 0, len(order))
	for _, id := range order {
		out = append(out, catalog[id])
	}
	return out
}

// Sellable returns only the plans that can go through checkout.
func Sellable() []Plan {
	var out []Plan
	for _, p := range All() {
		if p.Sellable {
			out = append(out, p)
		}
	}
	return out
}

// PriceBRL is the display price in reais.
func (p Plan) PriceBRL() float64 {
	return float64(p.PriceCents) / 100
}

// AllowsMoreProducts reports whether an owner with count products may add
// another under this plan.
func (p Plan) AllowsMoreProducts(count int) bool {
	if p.Limits.MaxProducts == nil {
		return true
	}
	return count < *p.Limits.MaxProducts
}

// View converts the catalog entry to its public representation.
func (p Plan) View() View {
	return View{
		ID:           p.ID,
		Name:         p.Name,
		Badge:        p.Badge,
		Highlight:    p.Highlight,
		PriceCents:   p.PriceCents,
		PriceBRL:     p.PriceBRL(),
		DurationDays: p.DurationDays,
		Sellable:     p.Sellable,
		Limits:       p.Limits,
		Features:     p.Features,
	}
}

