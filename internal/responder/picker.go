package responder

import (
	"math/rand"
	"sync"
	"time"
)

// Picker 从固定集合中均匀随机地选择一项。并发安全。
type Picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPicker 创建一个 Picker。seed 为 0 时使用当前时间作为种子。
func NewPicker(seed int64) *Picker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Picker{rnd: rand.New(rand.NewSource(seed))}
}

// Pick 返回 pool 中的一项，pool 为空时返回空字符串。
func (p *Picker) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	p.mu.Lock()
	i := p.rnd.Intn(len(pool))
	p.mu.Unlock()
	return pool[i]
}
