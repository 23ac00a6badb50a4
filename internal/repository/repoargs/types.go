package repoargs

type RepositoryName string

const (
	OrderRepoName   RepositoryName = "order"
	PaymentRepoName RepositoryName = "payment"
	BankQRRepoName  RepositoryName = "bank_qr"
)
