// Package connectivity tracks last-observed network reachability.
//
// The monitor seeds its state from a synchronous HTTP probe, then keeps it
// current from two sources: udev netlink events on the net subsystem
// (interface add/remove/change), each confirmed by a fresh probe, and a
// periodic probe fallback for platforms without netlink access. Consumers
// must treat the reported state as a hint; an operation started while
// "online" can still fail from transient loss.
package connectivity
