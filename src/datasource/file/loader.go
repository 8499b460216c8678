package file

import (
	"sync"
	"sync/atomic"
)

// Loader 推文表的显式单例
//
// 进程启动时构造一次，Load 只会真正读盘一次，之后总是返回同一个 *TweetTable。
// 失败同样会被记住：数据文件缺失或损坏时整个进程应当退出，而不是重试。
type Loader struct {
	opts  ReadOptions
	once  sync.Once
	table *TweetTable
	err   error
	reads atomic.Int32
	read  func(ReadOptions) (*TweetTable, error)
}

// NewLoader 创建加载器，不会立刻读取文件
func NewLoader(opts ReadOptions) *Loader {
	return &Loader{opts: opts, read: ReadTweets}
}

// Load 第一次调用时读取数据文件
func (l *Loader) Load() (*TweetTable, error) {
	l.once.Do(func() {
		l.reads.Add(1)
		l.table, l.err = l.read(l.opts)
	})
	return l.table, l.err
}

// MustLoad 加载失败直接 panic，供启动流程使用
func (l *Loader) MustLoad() *TweetTable {
	t, err := l.Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Reads 实际读盘次数(0 或 1)
func (l *Loader) Reads() int {
	return int(l.reads.Load())
}

// Path 数据文件路径
func (l *Loader) Path() string {
	return l.opts.Path
}
