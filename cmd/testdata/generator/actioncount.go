package generator

import (
	"io"
	"math/rand/v2"
	"strconv"
)

// ActionCountGenerator generates user action records: "user_N\tuser_N did {action}"
type ActionCountGenerator struct {
	UserCount int
	rand      *rand.Rand
	linePool  [][]byte // Pre-generated complete records
}

var actions = []string{
	"login",
	"logout",
	"viewed product",
	"added to cart",
	"removed from cart",
	"purchased",
	"reviewed product",
	"updated profile",
	"changed password",
	"subscribed to newsletter",
}

const linePoolSize = 10000

func (g *ActionCountGenerator) Init(r *rand.Rand) {
	g.rand = r

	userIDs := make([]string, max(g.UserCount, 1))
	for i := range userIDs {
		userIDs[i] = "user_" + strconv.Itoa(i)
	}

	g.linePool = make([][]byte, linePoolSize)
	for i := range g.linePool {
		userID := userIDs[r.IntN(len(userIDs))]
		action := actions[r.IntN(len(actions))]
		g.linePool[i] = []byte(userID + "\t" + userID + " did " + action + "\n")
	}
}

func (g *ActionCountGenerator) WriteRecord(w io.Writer) error {
	_, err := w.Write(g.linePool[g.rand.IntN(linePoolSize)])
	return err
}

func (g *ActionCountGenerator) Description() string {
	return "User action records: user_N\\tuser_N did {action}"
}

func (g *ActionCountGenerator) DefaultCount() int64 {
	return 1e4
}
