package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	InitialCoins = 100
	InitialGems  = 5

	MaxTotalWeight = 100

	// MinDayReturn keeps the portfolio value strictly positive so drawdown stays below 1.
	MinDayReturn = -95.0
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidAsset    = errors.New("unknown asset")
	ErrInvalidBadge    = errors.New("unknown badge")
	ErrInvalidContent  = errors.New("invalid content")
)

type Asset int

const (
	Tech Asset = iota
	Bond
	Gold
	Crypto
	ESG
	Stablecoin
	Yield

	NumAssets = int(Yield) + 1
)

var assetNames = [NumAssets]string{"tech", "bond", "gold", "crypto", "esg", "stablecoin", "yield"}

func AllAssets() []Asset {
	out := make([]Asset, NumAssets)
	for i := range out {
		out[i] = Asset(i)
	}
	return out
}

func (a Asset) Valid() bool { return a >= 0 && int(a) < NumAssets }

func (a Asset) String() string {
	if !a.Valid() {
		return fmt.Sprintf("asset(%d)", int(a))
	}
	return assetNames[a]
}

func ParseAsset(s string) (Asset, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range assetNames {
		if name == key {
			return Asset(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAsset, s)
}

func (a Asset) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, ErrInvalidAsset
	}
	return []byte(a.String()), nil
}

func (a *Asset) UnmarshalText(b []byte) error {
	v, err := ParseAsset(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Weights holds an allocation percentage per asset.
type Weights [NumAssets]int

func DefaultWeights() Weights {
	return Weights{
		Tech:       16,
		Bond:       16,
		Gold:       16,
		Crypto:     16,
		ESG:        16,
		Stablecoin: 10,
		Yield:      10,
	}
}

func (w Weights) Get(a Asset) int {
	if !a.Valid() {
		return 0
	}
	return w[a]
}

func (w Weights) Total() int {
	total := 0
	for _, v := range w {
		total += v
	}
	return total
}

// ActiveCount is the number of assets holding a positive weight.
func (w Weights) ActiveCount() int {
	n := 0
	for _, v := range w {
		if v > 0 {
			n++
		}
	}
	return n
}

func (w Weights) MaxWeight() int {
	max := 0
	for _, v := range w {
		if v > max {
			max = v
		}
	}
	return max
}

// Sanitize zeroes every asset outside allowed.
func (w Weights) Sanitize(allowed AssetSet) Weights {
	for i := range w {
		if !allowed.Has(Asset(i)) {
			w[i] = 0
		}
	}
	return w
}

func (w Weights) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, NumAssets)
	for i, v := range w {
		m[assetNames[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON ignores keys that do not name an asset.
func (w *Weights) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out Weights
	for k, v := range m {
		a, err := ParseAsset(k)
		if err != nil {
			continue
		}
		out[a] = v
	}
	*w = out
	return nil
}

type AssetSet uint16

func AllAssetSet() AssetSet { return AssetSet(1<<NumAssets - 1) }

func (s AssetSet) Has(a Asset) bool {
	return a.Valid() && s&(1<<uint(a)) != 0
}

func (s AssetSet) With(a Asset) AssetSet {
	if !a.Valid() {
		return s
	}
	return s | 1<<uint(a)
}

func (s AssetSet) Without(a Asset) AssetSet {
	if !a.Valid() {
		return s
	}
	return s &^ (1 << uint(a))
}

func (s AssetSet) List() []Asset {
	var out []Asset
	for _, a := range AllAssets() {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s AssetSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, NumAssets)
	for _, a := range s.List() {
		names = append(names, a.String())
	}
	return json.Marshal(names)
}

func (s *AssetSet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	var out AssetSet
	for _, n := range names {
		a, err := ParseAsset(n)
		if err != nil {
			continue
		}
		out = out.With(a)
	}
	*s = out
	return nil
}

type Badge int

const (
	Diversifier Badge = iota
	LongView
	RiskManager
	GreenPioneer
	SafeHaven
	CalmGuardian
	YieldSage

	NumBadges = int(YieldSage) + 1
)

var badgeNames = [NumBadges]string{
	"diversifier",
	"long_view",
	"risk_manager",
	"green_pioneer",
	"safe_haven",
	"calm_guardian",
	"yield_sage",
}

func AllBadges() []Badge {
	out := make([]Badge, NumBadges)
	for i := range out {
		out[i] = Badge(i)
	}
	return out
}

func (b Badge) Valid() bool { return b >= 0 && int(b) < NumBadges }

func (b Badge) String() string {
	if !b.Valid() {
		return fmt.Sprintf("badge(%d)", int(b))
	}
	return badgeNames[b]
}

func ParseBadge(s string) (Badge, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range badgeNames {
		if name == key {
			return Badge(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBadge, s)
}

func (b Badge) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, ErrInvalidBadge
	}
	return []byte(b.String()), nil
}

func (b *Badge) UnmarshalText(text []byte) error {
	v, err := ParseBadge(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// BadgeSet only ever grows between resets.
type BadgeSet uint16

func (s BadgeSet) Has(b Badge) bool {
	return b.Valid() && s&(1<<uint(b)) != 0
}

func (s BadgeSet) With(b Badge) BadgeSet {
	if !b.Valid() {
		return s
	}
	return s | 1<<uint(b)
}

func (s BadgeSet) Len() int {
	n := 0
	for _, b := range AllBadges() {
		if s.Has(b) {
			n++
		}
	}
	return n
}

func (s BadgeSet) List() []Badge {
	var out []Badge
	for _, b := range AllBadges() {
		if s.Has(b) {
			out = append(out, b)
		}
	}
	return out
}

func (s BadgeSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, NumBadges)
	for _, b := range s.List() {
		names = append(names, b.String())
	}
	return json.Marshal(names)
}

func (s *BadgeSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var out BadgeSet
	for _, n := range names {
		b, err := ParseBadge(n)
		if err != nil {
			return err
		}
		out = out.With(b)
	}
	*s = out
	return nil
}

// Progress maps a star count onto the 0-100 progress bar: 25 points per 5 stars.
func Progress(stars int) int {
	p := (stars / 5) * 25
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
