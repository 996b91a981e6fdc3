// Package domain holds the map print request model: parameter parsing with
// fallback defaults and the OpenStreetMap URL rule. It has no HTTP or browser
// dependencies.
package domain
