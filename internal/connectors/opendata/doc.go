// Package opendata provides a connector for public event listings published
// through the OpenDataSoft records search API.
//
// The connector pages through the dataset with start/rows parameters,
// refined by city, language and a minimum start date, and emits the
// "fields" object of each record as a raw event.
package opendata
