// Package discovery finds a validated trailer for a media title by walking
// an ordered chain of search strategies, cheapest first. Each candidate a
// strategy produces is resolved to trailer metadata and re-scored against
// the query before acceptance; a strategy that yields nothing usable simply
// hands control to the next one.
package discovery
