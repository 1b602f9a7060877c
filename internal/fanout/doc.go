// Package fanout delivers values to any number of channel subscribers without
// blocking the publisher.
package fanout
