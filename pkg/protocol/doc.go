// Package protocol is the binary wire format between a server-side tree
// and a remote client that mirrors it.
//
// The server never ships virtual nodes. It records the node operations the
// patcher performs against its target and sends them as a MutationFrame,
// one per scheduler flush. The client replays them in order against its
// real DOM. Nodes are addressed by numeric ids assigned at creation.
//
// Every message is a Frame:
//
//	[Type: 1 byte][Length: uint32 big-endian][Payload]
//
// Payloads use protobuf-style varints for integers and varint
// length-prefixed strings. Decoders check every length and count against
// MaxStringLen and MaxCount before allocating.
//
// Example SetAttr op:
//
//	[Code: 0x07][Node: varint][Key: string][Value: string]
package protocol
