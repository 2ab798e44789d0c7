package portal

// defaultUserAgent matches a mainstream desktop browser. The portal's CDN
// drops requests from obviously non-browser agents, and switching agents
// mid-session is itself a bot signal, so one agent is used for the whole
// process lifetime.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// browserHeaders is the navigation header profile sent with HTML page
// requests, matching what the user agent above would send.
func browserHeaders() map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
	}
}

// jsonHeaders marks a request as the portal front-end's own XHR traffic.
// The .json endpoints answer plain navigation requests with an HTML error
// page instead of the payload.
func jsonHeaders() map[string]string {
	return map[string]string{
		"Accept":           "application/json",
		"X-Requested-With": "XMLHttpRequest",
	}
}
