package feeds

// init registers all built-in feed adapters.
func init() {
	Register("polygon", NewPolygonFeed)
	Register("dune", NewDuneFeed)
	Register("kraken", NewKrakenFeed)
	Register("coinapi", NewCoinAPIFeed)
}
