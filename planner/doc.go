// Package planner slices a travel range into candidate trips and reduces the
// flight, weather and price-trend data gathered for them into ranked,
// date-aligned bundles. Nothing here performs I/O.
package planner
