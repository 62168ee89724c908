// Package viewport tracks the rendered size of an image element.
//
// The platform's geometry-observation facility is abstracted as an Element
// that delivers resize entries to its observers. Subscribe turns those raw
// entries into whole-pixel Size notifications, suppressing repeats.
//
// Notifications for one element are expected to arrive serially, as they do
// on a UI event loop. Each subscription owns its ScaleState; nothing is shared
// between elements.
package viewport
