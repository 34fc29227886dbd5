package table

import (
	"github.com/arthurfeeney/nrlsh/distance"
	"github.com/arthurfeeney/nrlsh/model"
)

func ids[F distance.Float](items []model.KV[F]) []int {
	out := make([]int, len(items))
	for i, kv := range items {
		out[i] = kv.ID
	}
	return out
}
