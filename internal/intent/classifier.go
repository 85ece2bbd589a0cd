// Package intent maps free text to the small closed set of sales intents the
// bot answers, using an explicit ordered rule table.
package intent

import (
	"regexp"
	"strings"
)

// Tag is a closed-vocabulary intent label.
type Tag string

const (
	Demo       Tag = "demo"
	Order      Tag = "order"
	Price      Tag = "price"
	What       Tag = "what"
	Track      Tag = "track"
	Return     Tag = "return"
	Install    Tag = "install"
	Bulk       Tag = "bulk"
	Warranty   Tag = "warranty"
	Lifespan   Tag = "lifespan"
	ShoeDamage Tag = "shoe_damage"
	COD        Tag = "cod_inquiry"
	Human      Tag = "human"
	Help       Tag = "help"
	Greeting   Tag = "greeting"
	Unknown    Tag = "unknown"
)

// Predicate tests normalized (lowercased, trimmed) text.
type Predicate func(normalized string) bool

// Rule pairs a predicate with the tag it yields.
type Rule struct {
	Tag   Tag
	Match Predicate
}

// Contains matches when any of the substrings occurs in the text.
func Contains(substrings ...string) Predicate {
	return func(t string) bool {
		for _, s := range substrings {
			if strings.Contains(t, s) {
				return true
			}
		}
		return false
	}
}

// Pattern matches a compiled regular expression.
func Pattern(re *regexp.Regexp) Predicate {
	return re.MatchString
}

// AnyOf matches when at least one predicate matches.
func AnyOf(preds ...Predicate) Predicate {
	return func(t string) bool {
		for _, p := range preds {
			if p(t) {
				return true
			}
		}
		return false
	}
}

var (
	greetingPattern = regexp.MustCompile(`^(hi|hello|hey|hii|hola|namaste|yo|salaam|gm|good morning)\b`)
	codPattern      = regexp.MustCompile(`\bcod\b`)
)

// DefaultRules returns the canonical rule table. Order is significant: the
// first matching rule wins, so "order demo video" is a demo request and
// "track my order" is a tracking request.
func DefaultRules() []Rule {
	return []Rule{
		{Demo, Contains("demo", "reel", "video", "watch")},
		{COD, AnyOf(Pattern(codPattern), Contains("cash on delivery"))},
		{Track, Contains("track", "delivery", "kaha hai", "where is my order", "kab aayega")},
		{Return, Contains("return", "refund", "exchange", "replace")},
		{Order, Contains("order", "buy", "flipkart", "link", "website")},
		{Lifespan, Contains("how long", "kitne din", "kitna chalega", "lifespan", "durable", "last long")},
		{Price, Contains("price", "kitna", "kitne", "cost", "rs ", "₹", "how much")},
		{What, Contains("kya hai", "kya karta", "what is this", "ye kya", "use kaise", "how to use")},
		{Install, Contains("install", "lagana", "lagaye", "attach", "fit kaise")},
		{Warranty, Contains("warranty", "guarantee")},
		{ShoeDamage, Contains("damage", "scratch", "kharab", "tear")},
		{Bulk, Contains("bulk", "crew", "group", "wholesale")},
		{Human, Contains("human", "real person", "call me", "insaan")},
		{Help, Contains("help", "support", "agent")},
		{Greeting, Pattern(greetingPattern)},
	}
}

// Classifier evaluates an ordered rule list, first match wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier copies rules so later mutation by the caller has no effect.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Classify returns the tag of the first matching rule, or Unknown.
func (c *Classifier) Classify(text string) Tag {
	t := Normalize(text)
	if t == "" {
		return Unknown
	}
	return FirstMatch(t, c.rules, Unknown)
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// FirstMatch walks rules in order and returns the first matching tag.
func FirstMatch(normalized string, rules []Rule, fallback Tag) Tag {
	for _, r := range rules {
		if r.Match != nil && r.Match(normalized) {
			return r.Tag
		}
	}
	return fallback
}

// Normalize lowercases and trims text before rule evaluation.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

var defaultClassifier = NewClassifier(DefaultRules())

// Classify runs the default rule table.
func Classify(text string) Tag {
	return defaultClassifier.Classify(text)
}
