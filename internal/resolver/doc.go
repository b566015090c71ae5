// Package resolver finds the external id of a catalog film on one metadata
// service.
//
// Resolve walks a fixed ladder and stops at the first validated match:
//
//  1. an id confirmed on an earlier cycle is trusted and re-fetched
//  2. the service A id embedded in the source page is validated (service A)
//  3. the service A id confirmed this cycle is bridged (service B)
//  4. every query title is searched with escalating relaxation: feature
//     films in the known year, related kinds, the adjacent years, and a
//     final unconstrained search when no year is known
//
// Search hits are examined in ranking order. Kind and year are checked
// before any credited directors are fetched, so a rejected hit costs no
// extra round-trip. Exhausting the ladder is an ordinary Unresolved outcome.
// Only a malformed payload surfacing from the lookup boundary yields Failed.
package resolver
