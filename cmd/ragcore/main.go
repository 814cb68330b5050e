// Command ragcore is a thin demonstrator that wires concrete
// adapters together the way an HTTP handler in the out-of-scope
// front-end layer would, without itself being that layer. It answers
// one question against in-memory sample documents so the retrieval
// core can be exercised end to end without a running Milvus/chromem
// instance or live LLM credentials.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	retrieval "github.com/hanlease/retrieval-core"
	"github.com/hanlease/retrieval-core/config"
	"github.com/hanlease/retrieval-core/dense"
	"github.com/hanlease/retrieval-core/document"
	"github.com/hanlease/retrieval-core/logger"
)

// echoGenerator is a Generator that returns a one-line demo answer
// naming the query, followed by the rendered context, standing in for a real gollm.LLM-backed generator.Generator when no
// API credentials are available. Real deployments construct
// generator.New(generator.Config{...}) instead.
type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, query, renderedContext string, useContractMode bool) (string, error) {
	return "[demo answer to: " + query + "]\n" + renderedContext, nil
}

func main() {
	lawIndex := dense.NewMemoryIndex()
	lawIndex.Add(document.Document{
		Content: "임대인은 임대차가 종료된 경우 보증금을 임차인에게 반환하여야 한다.",
		Metadata: map[string]any{
			document.MetaChunkID:  "law-1",
			document.MetaSrcTitle: "주택임대차보호법",
			document.MetaArticle:  "제3조의2",
			document.MetaTitle:    "보증금의 회수",
			document.MetaPriority: 1,
		},
	})
	ruleIndex := dense.NewMemoryIndex()
	caseIndex := dense.NewMemoryIndex()
	caseIndex.Add(document.Document{
		Content: "임대인이 보증금 반환을 지체한 사안에서 법원은 지연손해금 지급을 명하였다.",
		Metadata: map[string]any{
			document.MetaChunkID:  "case-1-a",
			document.MetaSrcTitle: "대법원 판결",
			document.MetaCaseNo:   "2020다12345",
			document.MetaCaseName: "보증금반환청구",
			document.MetaTitle:    "보증금반환청구",
			document.MetaPriority: 9,
		},
	})

	cfg := config.Default()
	cfg.EnableRerank = false // no reranker service available in this demo

	core, err := retrieval.New(
		retrieval.WithConfig(cfg),
		retrieval.WithLogger(logger.New(logger.Info)),
		retrieval.WithDenseIndex(retrieval.SourceLaw, lawIndex),
		retrieval.WithDenseIndex(retrieval.SourceRule, ruleIndex),
		retrieval.WithDenseIndex(retrieval.SourceCase, caseIndex),
		retrieval.WithGenerator(echoGenerator{}),
	)
	if err != nil {
		log.Fatalf("ragcore: failed to build core: %v", err)
	}

	question := "집주인이 보증금을 안 돌려줘요"
	if len(os.Args) > 1 {
		question = os.Args[1]
	}

	result, err := core.AnswerWithTrace(context.Background(), question, retrieval.QueryOptions{
		SkipNormalization: true,
	})
	if err != nil {
		log.Fatalf("ragcore: answer failed: %v", err)
	}

	fmt.Printf("Q: %s\n\n", question)
	fmt.Printf("References:\n")
	for _, r := range result.References {
		fmt.Printf("  - %s\n", r)
	}
	fmt.Printf("\nAnswer:\n%s\n", result.Answer)
}
