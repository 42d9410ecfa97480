// Package directory maintains the catalog of public APIs the assistant can
// draw on, persisted in Postgres and seeded from the built-in catalog.
package directory

// Entry describes one public API in the directory.
type Entry struct {
	ID              string  `json:"id,omitempty"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
	BaseURL         string  `json:"base_url"`
	AuthType        string  `json:"auth_type"`
	IsActive        bool    `json:"is_active"`
	PopularityScore float64 `json:"popularity_score"`
}

type catalogEntry struct {
	name        string
	baseURL     string
	authType    string
	description string
}

var catalog = map[string][]catalogEntry{
	"Weather": {
		{"OpenWeatherMap", "https://api.openweathermap.org/data/2.5", "api_key", "Current weather, forecasts, and historical data"},
		{"WeatherAPI", "https://api.weatherapi.com/v1", "api_key", "Real-time weather and forecast data"},
		{"wttr.in", "https://wttr.in", "none", "Console-oriented weather service"},
		{"Open-Meteo", "https://api.open-meteo.com/v1", "none", "Free weather API with global coverage"},
		{"Visual Crossing", "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services", "api_key", "Historical and forecast weather data"},
	},
	"Finance": {
		{"CoinGecko", "https://api.coingecko.com/api/v3", "none", "Cryptocurrency prices and market data"},
		{"Alpha Vantage", "https://www.alphavantage.co/query", "api_key", "Stock market data and technical indicators"},
		{"ExchangeRate-API", "https://v6.exchangerate-api.com/v6", "api_key", "Currency exchange rates"},
		{"CoinMarketCap", "https://pro-api.coinmarketcap.com/v1", "api_key", "Cryptocurrency market data"},
		{"Frankfurter", "https://api.frankfurter.app", "none", "European Central Bank exchange rates"},
		{"Binance", "https://api.binance.com/api/v3", "api_key", "Crypto trading and market data"},
	},
	"News": {
		{"NewsAPI", "https://newsapi.org/v2", "api_key", "Worldwide news from various sources"},
		{"GNews", "https://gnews.io/api/v4", "api_key", "Google News aggregator API"},
		{"The Guardian", "https://content.guardianapis.com", "api_key", "News from The Guardian"},
		{"New York Times", "https://api.nytimes.com/svc", "api_key", "Articles from NYT"},
		{"Hacker News", "https://hacker-news.firebaseio.com/v0", "none", "Tech news from YC Hacker News"},
	},
	"Entertainment": {
		{"TMDB", "https://api.themoviedb.org/3", "api_key", "Movies and TV shows database"},
		{"Spotify", "https://api.spotify.com/v1", "oauth", "Music streaming and metadata"},
		{"Deezer", "https://api.deezer.com", "oauth", "Music streaming service"},
		{"RAWG", "https://api.rawg.io/api", "api_key", "Video games database"},
		{"IGDB", "https://api.igdb.com/v4", "oauth", "Video games database by Twitch"},
		{"TVMaze", "https://api.tvmaze.com", "none", "TV shows information"},
		{"OMDb", "https://www.omdbapi.com", "api_key", "Open Movie Database"},
		{"Jikan", "https://api.jikan.moe/v4", "none", "Anime and manga database (MyAnimeList)"},
	},
	"Social": {
		{"Twitter/X", "https://api.twitter.com/2", "oauth", "Twitter/X social media API"},
		{"Reddit", "https://www.reddit.com", "oauth", "Reddit posts and comments"},
		{"Discord", "https://discord.com/api/v10", "oauth", "Discord bot and server management"},
		{"Mastodon", "https://mastodon.social/api/v1", "oauth", "Federated social network"},
	},
	"AI & ML": {
		{"OpenAI", "https://api.openai.com/v1", "api_key", "GPT models, DALL-E, Whisper"},
		{"Anthropic", "https://api.anthropic.com/v1", "api_key", "Claude AI models"},
		{"Hugging Face", "https://api-inference.huggingface.co/models", "api_key", "ML model inference"},
		{"Replicate", "https://api.replicate.com/v1", "api_key", "Run ML models in the cloud"},
		{"Stability AI", "https://api.stability.ai/v1", "api_key", "Stable Diffusion image generation"},
	},
	"Utilities": {
		{"IP-API", "https://ip-api.com/json", "none", "IP geolocation"},
		{"QR Code Generator", "https://api.qrserver.com/v1", "none", "Generate QR codes"},
		{"URL Shortener (TinyURL)", "https://tinyurl.com/api-create.php", "none", "Shorten URLs"},
		{"Carbon", "https://carbonara.solopov.dev/api/cook", "none", "Create code screenshots"},
		{"Random User", "https://randomuser.me/api", "none", "Generate random user data"},
		{"Lorem Picsum", "https://picsum.photos", "none", "Random placeholder images"},
		{"UUID Generator", "https://www.uuidtools.com/api/generate", "none", "Generate UUIDs"},
	},
	"Food & Drinks": {
		{"TheMealDB", "https://www.themealdb.com/api/json/v1/1", "none", "Meal recipes database"},
		{"TheCocktailDB", "https://www.thecocktaildb.com/api/json/v1/1", "none", "Cocktail recipes"},
		{"Spoonacular", "https://api.spoonacular.com", "api_key", "Recipe and nutrition data"},
		{"Open Food Facts", "https://world.openfoodfacts.org/api/v0", "none", "Food products database"},
		{"Edamam", "https://api.edamam.com/api", "api_key", "Nutrition analysis"},
	},
	"Science": {
		{"NASA", "https://api.nasa.gov", "api_key", "Space and astronomy data"},
		{"SpaceX", "https://api.spacexdata.com/v4", "none", "SpaceX launch data"},
		{"USGS Earthquake", "https://earthquake.usgs.gov/fdsnws/event/1", "none", "Earthquake data"},
		{"CERN Open Data", "https://opendata.cern.ch/api", "none", "Particle physics data"},
		{"PubChem", "https://pubchem.ncbi.nlm.nih.gov/rest/pug", "none", "Chemical compound data"},
	},
	"Education": {
		{"Wikipedia", "https://en.wikipedia.org/api/rest_v1", "none", "Wikipedia articles and data"},
		{"Open Library", "https://openlibrary.org/api", "none", "Book metadata"},
		{"Dictionary API", "https://api.dictionaryapi.dev/api/v2", "none", "Word definitions"},
		{"Quotable", "https://api.quotable.io", "none", "Random quotes"},
		{"Numbers API", "http://numbersapi.com", "none", "Facts about numbers"},
		{"Trivia API", "https://opentdb.com/api.php", "none", "Trivia questions"},
	},
	"Transportation": {
		{"AviationStack", "https://api.aviationstack.com/v1", "api_key", "Flight tracking data"},
		{"OpenSky Network", "https://opensky-network.org/api", "none", "Real-time aircraft tracking"},
		{"SNCF", "https://api.sncf.com/v1", "api_key", "French trains schedule"},
		{"TransitLand", "https://transit.land/api/v2", "api_key", "Public transit data"},
	},
	"Government": {
		{"Data.gov", "https://api.data.gov", "api_key", "US government open data"},
		{"EU Open Data", "https://data.europa.eu/api/hub", "none", "European Union data"},
		{"UK Parliament", "https://members-api.parliament.uk/api", "none", "UK Parliament data"},
		{"World Bank", "https://api.worldbank.org/v2", "none", "Global development data"},
	},
	"Sports": {
		{"API-Football", "https://api-football-v1.p.rapidapi.com/v3", "api_key", "Football/soccer data"},
		{"TheSportsDB", "https://www.thesportsdb.com/api/v1/json/3", "none", "Sports teams and events"},
		{"NBA API", "https://www.balldontlie.io/api/v1", "none", "NBA basketball stats"},
		{"F1 Ergast", "https://ergast.com/api/f1", "none", "Formula 1 racing data"},
	},
	"Health": {
		{"OpenFDA", "https://api.fda.gov", "none", "FDA drug and device data"},
		{"COVID-19 API", "https://disease.sh/v3/covid-19", "none", "COVID-19 statistics"},
		{"HealthCare.gov", "https://data.healthcare.gov/api/1", "none", "US healthcare data"},
	},
	"E-commerce": {
		{"Fake Store API", "https://fakestoreapi.com", "none", "Fake e-commerce data for testing"},
		{"Stripe", "https://api.stripe.com/v1", "api_key", "Payment processing"},
		{"PayPal", "https://api.paypal.com/v1", "oauth", "Payment processing"},
	},
	"DevTools": {
		{"GitHub", "https://api.github.com", "oauth", "GitHub repositories and users"},
		{"GitLab", "https://gitlab.com/api/v4", "oauth", "GitLab projects and CI/CD"},
		{"NPM Registry", "https://registry.npmjs.org", "none", "NPM package data"},
		{"PyPI", "https://pypi.org/pypi", "none", "Python package data"},
		{"StackExchange", "https://api.stackexchange.com/2.3", "api_key", "Stack Overflow Q&A"},
	},
	"Communication": {
		{"Twilio", "https://api.twilio.com/2010-04-01", "basic", "SMS, voice, and messaging"},
		{"SendGrid", "https://api.sendgrid.com/v3", "api_key", "Email delivery service"},
		{"Mailgun", "https://api.mailgun.net/v3", "api_key", "Email API"},
		{"Slack", "https://slack.com/api", "oauth", "Slack messaging and workspace"},
	},
	"Maps & Location": {
		{"OpenStreetMap Nominatim", "https://nominatim.openstreetmap.org", "none", "Geocoding and reverse geocoding"},
		{"Mapbox", "https://api.mapbox.com", "api_key", "Maps and navigation"},
		{"OpenCage", "https://api.opencagedata.com/geocode/v1", "api_key", "Geocoding service"},
		{"PositionStack", "https://api.positionstack.com/v1", "api_key", "Forward and reverse geocoding"},
	},
	"Fun & Random": {
		{"Chuck Norris Jokes", "https://api.chucknorris.io/jokes", "none", "Chuck Norris jokes"},
		{"Dad Jokes", "https://icanhazdadjoke.com", "none", "Dad jokes"},
		{"Cat Facts", "https://catfact.ninja", "none", "Random cat facts"},
		{"Dog API", "https://dog.ceo/api", "none", "Random dog images"},
		{"PokeAPI", "https://pokeapi.co/api/v2", "none", "Pokemon data"},
		{"Rick and Morty", "https://rickandmortyapi.com/api", "none", "Rick and Morty characters"},
		{"Kanye.rest", "https://api.kanye.rest", "none", "Kanye West quotes"},
		{"Advice Slip", "https://api.adviceslip.com", "none", "Random advice"},
		{"Bored API", "https://www.boredapi.com/api", "none", "Activity suggestions"},
	},
}

// Catalog returns the built-in seed catalog, ordered by category then name
// as declared.
func Catalog() []Entry {
	var out []Entry
	for _, category := range catalogCategories() {
		for _, e := range catalog[category] {
			out = append(out, Entry{
				Name:            e.name,
				Category:        category,
				Description:     e.description,
				BaseURL:         e.baseURL,
				AuthType:        e.authType,
				IsActive:        true,
				PopularityScore: 0.5,
			})
		}
	}
	return out
}

func catalogCategories() []string {
	return []string{
		"Weather", "Finance", "News", "Entertainment", "Social", "AI & ML",
		"Utilities", "Food & Drinks", "Science", "Education", "Transportation",
		"Government", "Sports", "Health", "E-commerce", "DevTools",
		"Communication", "Maps & Location", "Fun & Random",
	}
}
