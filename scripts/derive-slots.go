// Small helper to print the gauge controller storage keys proven for a
// gauge vote, without touching an RPC endpoint:
// - point weight key for the epoch
// - last-vote and slope keys when -user is given
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stake-dao/votemarket-relay/x/votemarket/epoch"
	"github.com/stake-dao/votemarket-relay/x/votemarket/protocol"
	"github.com/stake-dao/votemarket-relay/x/votemarket/slots"
)

func main() {
	proto := flag.String("protocol", "curve", "protocol layout name")
	gauge := flag.String("gauge", "", "gauge address (required)")
	user := flag.String("user", "", "voter address")
	ts := flag.Uint64("epoch", 0, "epoch timestamp, 0 means the current week")
	flag.Parse()

	if !common.IsHexAddress(*gauge) || (*user != "" && !common.IsHexAddress(*user)) {
		fmt.Fprintln(os.Stderr, "usage: derive-slots -protocol curve -gauge 0x... [-user 0x...] [-epoch 1731542400]")
		os.Exit(2)
	}
	if *ts == 0 {
		*ts = uint64(time.Now().Unix())
	}

	layout, err := protocol.MustDefault().Get(*proto)
	if err != nil {
		panic(err)
	}
	gaugeAddr := common.HexToAddress(*gauge)
	at := epoch.Canonical(*ts)

	fmt.Printf("PROTOCOL=%s\nCONTROLLER=%s\nSCHEME=%s\nEPOCH=%d\n\n", layout.Name, layout.Controller.Hex(), layout.Scheme, at)

	weight, err := slots.WeightKey(layout, gaugeAddr, at)
	if err != nil {
		panic(err)
	}
	fmt.Printf("POINT_WEIGHT_KEY=%s\n", weight.Hex())

	if *user == "" {
		return
	}
	keys, err := slots.UserKeys(layout, common.HexToAddress(*user), gaugeAddr)
	if err != nil {
		panic(err)
	}
	for i, key := range keys {
		fmt.Printf("USER_KEY_%d=%s\n", i, key.Hex())
	}
}
