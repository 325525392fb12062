package wayfinder_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/dsl"
)

// ExampleMatch resolves one location the way a server would before rendering.
func ExampleMatch() {
	b := dsl.New()
	b.Route("/").ID("app").Artifact("layout").
		Route("teams/:team").ID("team").Artifact("team-page").
		Route("members/:member").ID("member").Artifact("member-page")

	tree, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	loc := domain.ParseLocation("/teams/core/members/ada?tab=activity")
	wayfinder.Match(context.Background(), tree, loc, func(err error, t *domain.Transition, state *domain.RouterState) {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(state.Branch.IDs())
		fmt.Println(state.Params["team"], state.Params["member"])
		for _, set := range state.Artifacts {
			fmt.Println(set.Single)
		}
		fmt.Println(wayfinder.Href("../../..", nil, wayfinder.BranchPaths(state), ""))
	})

	// Output:
	// [app team member]
	// core ada
	// layout
	// team-page
	// member-page
	// /teams
}

// ExampleHref shows relative resolution under a basename.
func ExampleHref() {
	branch := []string{"/", "admin"}
	fmt.Println(wayfinder.Href("invoices", domain.Query{"status": {"open"}}, branch, "/app"))
	fmt.Println(wayfinder.Href("../../../dashboard", nil, branch, "/app"))
	fmt.Println(wayfinder.Href("../", nil, branch, "/app"))

	// Output:
	// /app/admin/invoices?status=open
	// /app/dashboard
	// /app/
}
