package lever

// Lever types used by both the fallback templates and the per-category
// metric overrides.
const (
	typeEmail   = "Email Marketing"
	typeSocial  = "Paid Social"
	typeContent = "Content Marketing"
)

// template is one base strategy instantiated per finalized audience. The
// base numbers are scaled by audience quality and size before use.
type template struct {
	name            string
	description     string
	leverType       string
	baseImpact      int
	baseDifficulty  int
	timeToImplement string
	baseCostLow     int
	baseCostHigh    int
	successMetrics  []string
	rationale       string
	basePriority    int
}

// leverTemplates is the fixed per-audience strategy set: exactly three
// levers per audience, one of each type.
var leverTemplates = []template{
	{
		name:            "Personalized Email Campaign",
		description:     "Targeted email campaigns with personalized content",
		leverType:       typeEmail,
		baseImpact:      85,
		baseDifficulty:  30,
		timeToImplement: "2-3 weeks",
		baseCostLow:     5000,
		baseCostHigh:    8000,
		successMetrics:  []string{"Open Rate", "Click Rate", "Conversion"},
		rationale:       "Email marketing shows highest ROI for targeted demographics",
		basePriority:    90,
	},
	{
		name:            "Social Media Advertising",
		description:     "Platform-specific social media ad campaigns",
		leverType:       typeSocial,
		baseImpact:      75,
		baseDifficulty:  25,
		timeToImplement: "1-2 weeks",
		baseCostLow:     8000,
		baseCostHigh:    15000,
		successMetrics:  []string{"Reach", "CTR", "CPA"},
		rationale:       "Social media provides precise targeting capabilities",
		basePriority:    85,
	},
	{
		name:            "Content Marketing Strategy",
		description:     "Educational content that resonates with audience values",
		leverType:       typeContent,
		baseImpact:      70,
		baseDifficulty:  50,
		timeToImplement: "4-6 weeks",
		baseCostLow:     10000,
		baseCostHigh:    20000,
		successMetrics:  []string{"Organic Traffic", "Engagement", "Lead Quality"},
		rationale:       "Content builds long-term brand authority and trust",
		basePriority:    80,
	},
}

// category rewrites a lever's copy when the audience name matches one of its
// keywords. Categories are independent checks applied in declaration order;
// an audience matching several gets each rewrite in turn, so the last match
// wins on overlapping fields.
type category struct {
	keywords         []string
	namePrefix       string
	describe         func(baseDescription string) string
	rationaleSuffix  string
	metrics          map[string][]string // keyed by lever type
	adjustDifficulty func(leverType string, base int) int // optional
}

var audienceCategories = []category{
	{
		keywords:   []string{"professional", "business", "executive"},
		namePrefix: "Professional",
		describe: func(d string) string {
			return "Enterprise-grade " + d + " designed for business professionals who value efficiency " +
				"and ROI. Focuses on professional networking platforms and business-oriented messaging."
		},
		rationaleSuffix: "Professional audiences respond exceptionally well to value-driven, ROI-focused " +
			"messaging with clear business benefits.",
		metrics: map[string][]string{
			typeEmail:   {"B2B Open Rate +35%", "Professional Click Rate +50%", "Business Conversion +25%"},
			typeSocial:  {"LinkedIn Reach +400%", "Professional CTR +60%", "B2B CPA -25%"},
			typeContent: {"Industry Content Engagement +90%", "Thought Leadership +70%", "Professional Lead Quality +45%"},
		},
		adjustDifficulty: func(leverType string, base int) int {
			if leverType == typeEmail {
				return max(20, base-5)
			}
			return base
		},
	},
	{
		keywords:   []string{"eco", "sustainable", "green", "environment"},
		namePrefix: "Sustainable",
		describe: func(d string) string {
			return "Eco-conscious " + d + " that emphasizes sustainability, environmental impact, and " +
				"ethical practices. Leverages green messaging and sustainable brand partnerships."
		},
		rationaleSuffix: "Eco-conscious audiences prioritize authentic sustainability messaging and are " +
			"willing to pay premium for environmentally responsible brands.",
		metrics: map[string][]string{
			typeEmail:   {"Sustainability Email Engagement +45%", "Green Content CTR +55%", "Eco-Conversion +30%"},
			typeSocial:  {"Environmental Content Reach +350%", "Sustainability CTR +65%", "Green Brand CPA -20%"},
			typeContent: {"Sustainability Content Engagement +100%", "Environmental Brand Trust +80%", "Green Lifestyle Conversion +50%"},
		},
	},
	{
		keywords:   []string{"tech", "digital", "early", "adopter", "innovation"},
		namePrefix: "Tech-Forward",
		describe: func(d string) string {
			return "Innovation-focused " + d + " leveraging cutting-edge technology, beta features, and " +
				"early access programs. Targets tech enthusiasts and digital natives."
		},
		rationaleSuffix: "Tech-savvy audiences prefer innovative, data-driven approaches with access to " +
			"latest features and technologies.",
		metrics: map[string][]string{
			typeEmail:   {"Tech Newsletter Engagement +40%", "Innovation Content CTR +60%", "Beta Feature Conversion +35%"},
			typeSocial:  {"Tech Platform Reach +500%", "Innovation CTR +75%", "Early Adopter CPA -35%"},
			typeContent: {"Tech Content Engagement +120%", "Innovation Thought Leadership +90%", "Developer Community Growth +80%"},
		},
		adjustDifficulty: func(_ string, base int) int {
			return max(15, base-15)
		},
	},
	{
		keywords:   []string{"young", "millennial", "gen z", "youth"},
		namePrefix: "Youth-Targeted",
		describe: func(d string) string {
			return "Mobile-first " + d + " optimized for younger demographics. Emphasizes social sharing, " +
				"viral content, and peer-to-peer recommendations."
		},
		rationaleSuffix: "Younger demographics engage heavily with social and mobile channels, preferring " +
			"authentic, shareable content.",
		metrics: map[string][]string{
			typeEmail:   {"Mobile Email Engagement +50%", "Social Sharing CTR +70%", "Youth Conversion +40%"},
			typeSocial:  {"Social Platform Reach +600%", "Viral Content CTR +80%", "Youth CPA -30%"},
			typeContent: {"Social Content Engagement +150%", "Viral Sharing +100%", "Peer Influence Conversion +60%"},
		},
	},
	{
		keywords:   []string{"style", "fashion", "conscious", "trendy"},
		namePrefix: "Style-Conscious",
		describe: func(d string) string {
			return "Fashion-forward " + d + " focusing on style trends, brand aesthetics, and visual " +
				"appeal. Leverages influencer partnerships and visual platforms."
		},
		rationaleSuffix: "Style-conscious audiences are highly visual and influenced by trends, brand " +
			"aesthetics, and peer recommendations.",
		metrics: map[string][]string{
			typeEmail:   {"Visual Email Engagement +45%", "Style Content CTR +55%", "Fashion Conversion +35%"},
			typeSocial:  {"Visual Platform Reach +450%", "Style Content CTR +70%", "Fashion CPA -25%"},
			typeContent: {"Style Content Engagement +110%", "Fashion Trend Authority +85%", "Visual Brand Recognition +75%"},
		},
	},
}
