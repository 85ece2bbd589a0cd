// Package replies holds the canned WhatsApp replies, keyed by template and language.
package replies

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/language"
)

// Key names a canned reply.
type Key string

const (
	Demo          Key = "demo"
	Order         Key = "order"
	Price         Key = "price"
	What          Key = "what"
	Safety        Key = "safety"
	Welcome       Key = "welcome"
	TrackPrompt   Key = "track_prompt"
	OrderStatus   Key = "order_status"
	OrderNotFound Key = "order_not_found"
	Return        Key = "return"
	Install       Key = "install"
	Warranty      Key = "warranty"
	Lifespan      Key = "lifespan"
	ShoeDamage    Key = "shoe_damage"
	COD           Key = "cod"
	Bulk          Key = "bulk"
	HumanOpen     Key = "human_open"
	HumanClosed   Key = "human_closed"
	Help          Key = "help"
	Support       Key = "support"
	Fallback      Key = "fallback"
	Refusal       Key = "refusal"
)

// Links are the configured values interpolated into every template.
type Links struct {
	Flipkart string
	Demo     string
	Support  string
	Tracking string
	Price    string
}

type variants struct {
	en string
	hi string
}

var templates = map[Key]variants{
	Demo: {
		en: "⚡ Riders are going crazy for this!\nWatch the demo here 👇\n🎥 {{.Demo}}\n\n🔥 Want it under ₹{{.Price}}?\nJust reply ORDER",
		hi: "⚡ Riders pagal ho rahe hain iske liye!\nDemo video yahan dekho 👇\n🎥 {{.Demo}}\n\n🔥 Chahiye under ₹{{.Price}} mein?\nBas reply karo ORDER",
	},
	Order: {
		en: "🏁 Price under ₹{{.Price}} — Limited stock!\n🚀 Order now on Flipkart 👇\n{{.Flipkart}}\n\n💥 Fast delivery + easy returns — grab it before price increases",
		hi: "🏁 Price under ₹{{.Price}} — Limited stock hai!\n🚀 Abhi order karlo Flipkart se 👇\n{{.Flipkart}}\n\n💥 Flipkart delivery + easy returns — price badhne se pehle le lo",
	},
	Price: {
		en: "Bro price sirf ₹{{.Price}} hai Flipkart pe.\nCOD + fast delivery mil jayegi.\nBuy → type ORDER",
	},
	What: {
		en: "Bro ye spark slider hai —\nBoot ke neeche laga kar drag karte hi\nREAL golden sparks nikalte hain 🔥\n\nNight rides & reels ke liye OP effect 😎\n\nDemo → type DEMO\nOrder → type ORDER",
	},
	Safety: {
		en: "Yes bro — sparks are just for visual effect 🔥\nUse only in open safe space, away from fuel/people.",
		hi: "Haan bro — sparks sirf visual effect ke liye hain 🔥\nSirf open safe space mein use karo, fuel/logon se door.",
	},
	Welcome: {
		en: "Hey rider 👋 Turbo Thrill V5 Spark Slider here!\nType DEMO for video, ORDER for Flipkart link.",
		hi: "Hey rider 👋 Turbo Thrill V5 Spark Slider hai!\nDemo ke liye DEMO, Flipkart link ke liye ORDER likho.",
	},
	TrackPrompt: {
		en: "Sure bro 📦 Send your order number (like #1023), or the email/phone used for the order.",
		hi: "Done bro 📦 Apna order number bhejo (jaise #1023), ya order wala email/phone.",
	},
	OrderStatus: {
		en: "📦 Order {{.OrderName}}: {{.OrderStatus}}\nTrack here 👉 {{.OrderTracking}}",
		hi: "📦 Order {{.OrderName}}: {{.OrderStatus}}\nYahan track karo 👉 {{.OrderTracking}}",
	},
	OrderNotFound: {
		en: "Sorry bro, I couldn't find that order 😕\nCheck the number and type TRACK again, or type HUMAN to talk to our team.",
		hi: "Sorry bro, couldn't find this order 😕\nNumber check karke phir TRACK likho, ya team se baat ke liye HUMAN likho.",
	},
	Return: {
		en: "Returns & refunds go through Flipkart bro 🔄\nOpen the order in your Flipkart app → Return/Replace.\nStuck? Mail us: {{.Support}}",
		hi: "Return/refund Flipkart se hota hai bro 🔄\nFlipkart app mein order kholo → Return/Replace.\nDikkat ho to mail karo: {{.Support}}",
	},
	Install: {
		en: "Easy bro 🛠️ Strap the slider under your boot sole, tighten it flat.\nDrag it on the road and the sparks fly 🔥\nDemo → type DEMO",
		hi: "Easy hai bro 🛠️ Slider ko boot ke sole ke neeche strap se tight lagao.\nRoad pe drag karo, sparks niklenge 🔥\nDemo → type DEMO",
	},
	Warranty: {
		en: "Flipkart's return policy covers manufacturing defects bro ✅\nAny issue, mail {{.Support}}",
		hi: "Manufacturing defect pe Flipkart return policy cover karti hai bro ✅\nKoi issue ho to mail karo {{.Support}}",
	},
	Lifespan: {
		en: "The flint block lasts many rides bro 💪\nDepends on how hard & how long you drag.\nOrder → type ORDER",
		hi: "Flint block kaafi rides chalta hai bro 💪\nKitna drag karte ho us pe depend karta hai.\nOrder → type ORDER",
	},
	ShoeDamage: {
		en: "No stress bro 👟 The slider sits on its own base plate, the sole doesn't touch the road.\nUse on flat strap area for best grip.",
		hi: "Tension mat lo bro 👟 Slider apni base plate pe rehta hai, sole road ko touch nahi karta.\nFlat strap area pe best grip aata hai.",
	},
	COD: {
		en: "Yes bro, COD available on Flipkart 💵\nOrder → type ORDER",
		hi: "Haan bro, Flipkart pe COD mil jayega 💵\nOrder → type ORDER",
	},
	Bulk: {
		en: "Riding crew order? 🏍️🔥 Love it bro!\nMail {{.Support}} with the quantity and we'll sort a deal.",
		hi: "Poori crew ke liye chahiye? 🏍️🔥 Mast bro!\nQuantity ke saath {{.Support}} pe mail karo, deal set kar denge.",
	},
	HumanOpen: {
		en: "Got it bro 🙌 Our team will message you here shortly.",
		hi: "Done bro 🙌 Team thodi der mein yahin message karegi.",
	},
	HumanClosed: {
		en: "Got it bro 🙌 Our team is offline right now ({{.Hours}}), they'll reply as soon as they're back.",
		hi: "Done bro 🙌 Team abhi offline hai ({{.Hours}}), wapas aate hi reply karegi.",
	},
	Help: {
		en: "Here to help bro 🙌\nDEMO → video\nORDER → Flipkart link\nTRACK → order status\nHUMAN → talk to our team",
		hi: "Help ke liye ready bro 🙌\nDEMO → video\nORDER → Flipkart link\nTRACK → order status\nHUMAN → team se baat",
	},
	Support: {
		en: "Bro I didn't get that 😅 Type DEMO, ORDER or HUMAN.\nOr mail us: {{.Support}}",
		hi: "Bro samjha nahi 😅 DEMO, ORDER ya HUMAN likho.\nYa mail karo: {{.Support}}",
	},
	Fallback: {
		en: "Okay bro! 👋 Turbo Thrill V5 — demo chahiye ya Flipkart link bheju?\n\n🏁 Price under ₹{{.Price}} — Limited Stock hai!\n🚀 Flipkart link: {{.Flipkart}}\n⚡ Demo: {{.Demo}}\n\nUse only in open safe space; avoid fuel/people. 😎",
	},
	Refusal: {
		en: "I can't assist with dangerous or illegal instructions. Please contact support: {{.Support}}.",
	},
}

type compiledVariants struct {
	en *template.Template
	hi *template.Template
}

// compiled holds every variant parsed once. Missing variables are errors.
var compiled = compileTemplates(templates)

func compileTemplates(set map[Key]variants) map[Key]compiledVariants {
	out := make(map[Key]compiledVariants, len(set))
	for key, v := range set {
		c := compiledVariants{en: mustParse(string(key)+".en", v.en)}
		if v.hi != "" {
			c.hi = mustParse(string(key)+".hi", v.hi)
		}
		out[key] = c
	}
	return out
}

func mustParse(name, text string) *template.Template {
	if strings.TrimSpace(text) == "" {
		panic("replies: empty template " + name)
	}
	return template.Must(template.New(name).Option("missingkey=error").Parse(text))
}

// Catalog renders canned replies with the configured links.
type Catalog struct {
	links Links
}

// New builds a Catalog. Empty links fall back to the literal defaults.
func New(links Links) *Catalog {
	if strings.TrimSpace(links.Price) == "" {
		links.Price = "498"
	}
	if strings.TrimSpace(links.Support) == "" {
		links.Support = "Support"
	}
	return &Catalog{links: links}
}

// Links returns the interpolated values.
func (c *Catalog) Links() Links {
	return c.links
}

// Render renders key in lang with optional extra variables. ta/te and any
// language without a dedicated variant use the English text.
func (c *Catalog) Render(key Key, lang language.Tag, extra map[string]string) (string, error) {
	v, ok := compiled[key]
	if !ok {
		return "", fmt.Errorf("replies: unknown template %q", key)
	}
	tmpl := v.en
	if lang == language.Hindi && v.hi != nil {
		tmpl = v.hi
	}
	data := map[string]string{
		"Flipkart": c.links.Flipkart,
		"Demo":     c.links.Demo,
		"Support":  c.links.Support,
		"Tracking": c.links.Tracking,
		"Price":    c.links.Price,
	}
	for k, val := range extra {
		data[k] = val
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("replies: execute %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Text renders key and returns "" when rendering fails.
func (c *Catalog) Text(key Key, lang language.Tag) string {
	out, err := c.Render(key, lang, nil)
	if err != nil {
		return ""
	}
	return out
}

// Keys lists every known template.
func Keys() []Key {
	keys := make([]Key, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	return keys
}
