// Package event normalises raw event records into domain events.
//
// Two record shapes are accepted. OpenAgenda records as published by
// OpenDataSoft (uid, title_fr, firstdate_begin, location_coordinates...)
// are renamed and rendered into French dates, coordinates and age texts.
// Records that already carry a vectorise_text are taken as pre-processed
// and only cleaned.
package event
