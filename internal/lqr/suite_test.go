package lqr

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLQR(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LQR Suite")
}
