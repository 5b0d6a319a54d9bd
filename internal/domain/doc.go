// Package domain models CDC 500 Cities health-measure observations.
//
// # Data Source
//
// Rows originate from the CDC 500 Cities project export (city- and
// tract-level small area estimates for chronic disease measures, published
// at https://chronicdata.cdc.gov/). One row is one observation: a place, a
// year, a measure, and a statistical flavor of that measure.
//
// # Dataset Conventions
//
// Place identity:
//
//	CityName + StateAbbr name the place: "Kansas City" + "MO".
//	The national rollup row uses "United States" / "US" and carries no
//	coordinate, so it can never be mapped, only tabulated.
//
// Coordinate format:
//
//	GeoLocation is the place centroid as a single cell: "(39.0997, -94.5786)"
//	meaning (latitude, longitude). Exports are inconsistent about wrapping
//	and spacing, so parsing strips any non-numeric wrapping from each token
//	instead of slicing fixed character offsets. See [ParseGeoLocation].
//
// Measure taxonomy:
//
//	CategoryID groups measures: UNHBEH (unhealthy behaviors), HLTHOUT
//	(health outcomes), PREVENT (prevention). Measure is the full measure
//	sentence ("Binge drinking among adults aged >=18 Years");
//	Short_Question_Text is the compact form used for display.
//
// Statistical types:
//
//	DataValueTypeID is AgeAdjPrv (age-adjusted prevalence) or CrdPrv (crude
//	prevalence). Every measure appears once per type, so values are only
//	comparable after both CategoryID and DataValueTypeID are pinned.
//
// Suppressed estimates:
//
//	Data_Value is empty when the estimate was suppressed for small
//	populations. It is carried as *float64; nil-valued rows are dropped at
//	the first filter stage and never reach binning or rendering.
//
// # Purity
//
// Transforms here are pure functions over []Record. They never log and never
// touch a clock, and they preserve input order unless the operation is
// explicitly a sort. Rendering decisions (colors, labels, viewports) live in
// this package too so that every frontend and export path derives pixels
// from the same rules.
package domain
