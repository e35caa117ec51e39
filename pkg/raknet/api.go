package raknet

// Reliability is the public name for what packetKind encodes internally;
// its values are numerically identical to the kind* constants so converting
// between them is a plain cast, not a lookup.
type Reliability uint8

const (
	Unreliable          Reliability = iota // no delivery guarantee
	UnreliableSequenced                    // newest-wins, no delivery guarantee
	Reliable                               // guaranteed delivery, no ordering
	ReliableOrdered                         // guaranteed delivery, strict order
	ReliableSequenced                       // guaranteed delivery, newest-wins
)

func (r Reliability) kind() packetKind {
	return packetKind(r)
}
