package processor

import (
	"fmt"

	"AirlineSentiment/src/datasource/file"
)

// RandomTweet 从指定情感的推文中均匀抽取一条
func (p *TweetProcessor) RandomTweet(label string) (file.Tweet, error) {
	s, err := ParseSentiment(label)
	if err != nil {
		return file.Tweet{}, err
	}

	matched := p.bySentiment(s)
	n := matched.Nrow()
	if n == 0 {
		return file.Tweet{}, fmt.Errorf("%w: no %s tweets", ErrEmptySelection, s)
	}

	row := matched.Subset([]int{p.sampler.IntN(n)})
	if row.Err != nil {
		return file.Tweet{}, row.Err
	}
	return file.Rows(row)[0], nil
}
