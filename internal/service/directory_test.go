package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/service"
	"agentcomm.app/relay/internal/store"
)

var _ = Describe("DirectoryService", func() {
	var (
		ctx      context.Context
		orgs     *mockOrganizationStore
		teams    *mockTeamStore
		users    *mockUserStore
		txRunner *mockTxRunner
		svc      service.DirectoryService
	)

	BeforeEach(func() {
		ctx = context.Background()
		orgs = &mockOrganizationStore{}
		teams = &mockTeamStore{}
		users = &mockUserStore{}
		txRunner = &mockTxRunner{stores: &mockStoreProvider{orgs: orgs, teams: teams, users: users, sessions: &mockSessionStore{}}}
		svc = service.NewDirectoryService(users, txRunner)
	})

	It("creates an organization with a slug derived from its name", func() {
		org, err := svc.CreateOrganization(ctx, "  Acme & Co. ")
		Expect(err).NotTo(HaveOccurred())
		Expect(org.ID).NotTo(BeZero())
		Expect(org.Name).To(Equal("Acme & Co."))
		Expect(org.Slug).To(Equal("acme-co"))
		Expect(orgs.createCalls).To(Equal(1))
	})

	It("falls back to a default slug", func() {
		org, err := svc.CreateOrganization(ctx, "!!!")
		Expect(err).NotTo(HaveOccurred())
		Expect(org.Slug).To(Equal("org"))
	})

	It("requires a name", func() {
		_, err := svc.CreateOrganization(ctx, " ")
		Expect(err).To(MatchError(service.ErrInvalidName))
		Expect(txRunner.txCalls).To(BeZero())
	})

	It("creates a team inside an existing organization", func() {
		var created *model.Team
		teams.createFn = func(_ context.Context, t *model.Team) error {
			created = t
			return nil
		}
		team, err := svc.CreateTeam(ctx, 1, "Finance", strPtr("Money things"))
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(Equal(team))
		Expect(team.OrgID).To(Equal(int64(1)))
	})

	It("refuses a team for an unknown organization", func() {
		orgs.getByIDFn = func(context.Context, int64) (*model.Organization, error) {
			return nil, store.ErrNotFound
		}
		_, err := svc.CreateTeam(ctx, 1, "Finance", nil)
		Expect(err).To(MatchError(store.ErrNotFound))
	})

	Describe("AddMember", func() {
		It("adds an active member with a normalized email", func() {
			teams.getByIDFn = func(_ context.Context, id int64) (*model.Team, error) {
				return &model.Team{ID: id, OrgID: 1}, nil
			}
			user, err := svc.AddMember(ctx, service.NewMember{
				OrgID:  1,
				TeamID: int64Ptr(20),
				Name:   "Bob",
				Email:  " Bob@Example.com ",
				Role:   strPtr("Analyst"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.IsActive).To(BeTrue())
			Expect(user.Email).To(Equal("bob@example.com"))
			Expect(user.InOrg(1)).To(BeTrue())
			Expect(user.RoleOr("")).To(Equal("Analyst"))
		})

		It("refuses a team from another organization", func() {
			teams.getByIDFn = func(_ context.Context, id int64) (*model.Team, error) {
				return &model.Team{ID: id, OrgID: 2}, nil
			}
			_, err := svc.AddMember(ctx, service.NewMember{OrgID: 1, TeamID: int64Ptr(20), Name: "Bob", Email: "bob@example.com"})
			Expect(err).To(MatchError(service.ErrTeamNotInOrg))
		})
	})

	It("maps a missing user to ErrUserNotFound", func() {
		_, err := svc.GetUser(ctx, 5)
		Expect(err).To(MatchError(service.ErrUserNotFound))
	})
})
