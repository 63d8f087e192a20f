package batch

import "github.com/rustyeddy/tradeledger/trade"

// Group is the records of one instrument, in input order.
type Group struct {
	Instrument string
	Records    []trade.Record
}

// SplitByInstrument partitions records per instrument. Groups come out in
// order of first appearance and each keeps the input order, so equal
// timestamps stay in the order the source gave them.
func SplitByInstrument(records []trade.Record) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		i, ok := index[r.Instrument]
		if !ok {
			i = len(groups)
			index[r.Instrument] = i
			groups = append(groups, Group{Instrument: r.Instrument})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
