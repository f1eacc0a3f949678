// Package rpi computes a weighted price index ("RPI") over a basket of tradeable
// goods of a virtual economy, between two dates or two date ranges.
//
// The core functionalities include:
//   - Basket: an immutable, ordered set of item names with relative weights.
//     Weights are normalized internally and need not sum to 1.
//   - Point-in-time index: Calculator.Compute compares the as-of price of every
//     item at two dates (the most recent observation at or before each date).
//   - Period average index: Calculator.ComputeAverage compares the mean price of
//     every item over two date ranges.
//   - Historical series: Calculator.History walks backward month by month and
//     produces year-over-year index points until history is exhausted.
//
// Items that cannot be resolved are excluded with a Reason and the remaining
// weights are renormalized over the surviving items, so a missing item never
// counts as a 0% change. When no item survives the index is undefined, which is
// distinct from a computed 0%.
//
// Prices and item identifiers come from collaborators implementing PriceResolver
// and ItemCatalog. How they fetch, cache or refresh data is up to them: see the
// jagex, wiki and store packages.
package rpi
