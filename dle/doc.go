// Package dle decodes byte streams framed with the DLE/ETX byte-stuffing
// protocol spoken by GPS timing receivers and similar serial devices.  A frame
// on the wire is `0x10 id payload 0x10 0x03`, where every literal `0x10` in the
// payload is doubled.
package dle
