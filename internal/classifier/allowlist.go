package classifier

// Platforms that routinely rank for brand-name queries without impersonating
// anyone: app stores, social networks, review sites, publishers, regulators.
var defaultAllowList = []string{
	// search, app stores
	"google.com", "google.co.uk", "apple.com", "microsoft.com", "bing.com",
	"amazon.com", "amazon.co.uk",
	// social
	"facebook.com", "instagram.com", "twitter.com", "x.com", "youtube.com",
	"linkedin.com", "tiktok.com", "reddit.com", "pinterest.com", "quora.com",
	"threads.net", "discord.com", "telegram.org", "t.me",
	// reviews, comparison, affiliates
	"trustpilot.com", "sitejabber.com", "askgamblers.com", "casinoguru.com",
	"casino.guru", "casino.org", "bonus.com", "oddschecker.com", "gamblingcom.com",
	"thepogg.com", "lcb.org", "casinomeister.com", "bonusfinder.com",
	"casinotopsonline.com", "covers.com", "gambling.com",
	// publishers, reference
	"wikipedia.org", "bbc.co.uk", "bbc.com", "theguardian.com", "telegraph.co.uk",
	"independent.co.uk", "dailymail.co.uk", "thesun.co.uk", "mirror.co.uk",
	"reuters.com", "bloomberg.com", "forbes.com", "medium.com", "crunchbase.com",
	"glassdoor.com", "glassdoor.co.uk", "indeed.com",
	// regulators, industry, company registers
	"gamblingcommission.gov.uk", "gov.uk", "gamstop.co.uk", "begambleaware.org",
	"gamcare.org.uk", "ibas-uk.com", "mga.org.mt", "companieshouse.gov.uk",
	"egr.global",
	"igamingbusiness.com", "sbcnews.co.uk",
}

// Vertical terms that carry no brand identity on their own.
var defaultGenericWords = []string{
	"casino", "casinos", "bet", "bets", "betting", "bingo", "slot", "slots",
	"poker", "games", "game", "gaming", "play", "sport", "sports", "sportsbook",
	"lottery", "lotto", "win", "wins", "vegas", "club", "online", "live", "the",
	"uk", "official", "app", "group", "ltd", "limited",
}
