package flow

// User-facing message texts. Formatting of track pages, quality menus and
// download outcomes lives in music/render; everything else is here.
const (
	msgGreeting = "🎵 Hi! I can search and download music.\n\n" +
		"Send /music <keywords> to search, or just tell me what to download."
	msgAskKeyword   = "🔍 What should I look for? Send a song name or artist."
	msgSessionReset = "Session reset. Send /music <keywords> to start over."
	msgExpired      = "⌛ Your session expired. Start a new search with /music <keywords>."
	msgInternal     = "❌ Something went wrong, please try again."

	msgPickTrack   = "Please reply with a track number, or \"next\"/\"prev\" to turn pages."
	msgPickQuality = "Please reply with a quality number."
	msgFirstPage   = "Already on the first page."
	msgLastPage    = "Already on the last page."
)
