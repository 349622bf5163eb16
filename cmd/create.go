package cmd

import (
	"fmt"
	"os"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/spf13/cobra"
)

var (
	itemName       string
	imageRef       string
	flavorRef      string
	keyRef         string
	networkRefs    []string
	publicKeyFile  string
	privateKeyFile string
	protected      bool
)

var (
	createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an item",
	}

	createInstanceCmd = &cobra.Command{
		Use:   "instance",
		Short: "Create an instance",
		Long: `Create an instance. The image, flavor, key-pair and networks are given by name or
identifier and are all resolved before anything is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}

			instance, err := s.factory.CreateInstance(ctx, s.conn, &cr.Instance{
				Metadata: cr.Metadata{Name: itemName},
				Image:    imageRef,
				Flavor:   flavorRef,
				KeyName:  keyRef,
				Networks: networkRefs,
			})
			if err != nil {
				return fmt.Errorf("error creating instance %q: %w", itemName, err)
			}
			printItems(cmd.OutOrStdout(), cr.KindInstance, []cr.Item{instance})
			return nil
		},
	}

	createKeypairCmd = &cobra.Command{
		Use:   "keypair",
		Short: "Create a key-pair",
		Long: `Create a key-pair from an OpenSSH public key. Without --public-key-file the backend
generates the key-pair and the private key is written to --private-key-file, or
printed when that flag is not set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}

			model := &cr.Keypair{Metadata: cr.Metadata{Name: itemName}}
			if publicKeyFile != "" {
				data, err := os.ReadFile(publicKeyFile)
				if err != nil {
					return fmt.Errorf("failed to read public key: %w", err)
				}
				if model, err = cr.NewKeypair(itemName, string(data)); err != nil {
					return err
				}
			}

			m, err := s.factory.Keypairs(s.conn)
			if err != nil {
				return err
			}
			keypair, err := m.Create(ctx, model)
			if err != nil {
				return fmt.Errorf("error creating keypair %q: %w", itemName, err)
			}

			out := cmd.OutOrStdout()
			printItems(out, cr.KindKeypair, []cr.Item{keypair})
			if keypair.PrivateKey == "" {
				return nil
			}
			if privateKeyFile != "" {
				if err := os.WriteFile(privateKeyFile, []byte(keypair.PrivateKey), 0o600); err != nil {
					return fmt.Errorf("failed to write private key: %w", err)
				}
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, keypair.PrivateKey)
			return nil
		},
	}

	createImageCmd = &cobra.Command{
		Use:   "image",
		Short: "Create an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}

			m, err := s.factory.Images(s.conn)
			if err != nil {
				return err
			}
			image, err := m.Create(ctx, &cr.Image{Metadata: cr.Metadata{Name: itemName}, Protected: protected})
			if err != nil {
				return fmt.Errorf("error creating image %q: %w", itemName, err)
			}
			printItems(cmd.OutOrStdout(), cr.KindImage, []cr.Item{image})
			return nil
		},
	}

	createNetworkCmd = &cobra.Command{
		Use:   "network",
		Short: "Create a network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}

			m, err := s.factory.Networks(s.conn)
			if err != nil {
				return err
			}
			network, err := m.Create(ctx, &cr.Network{Metadata: cr.Metadata{Name: itemName}})
			if err != nil {
				return fmt.Errorf("error creating network %q: %w", itemName, err)
			}
			printItems(cmd.OutOrStdout(), cr.KindNetwork, []cr.Item{network})
			return nil
		},
	}
)

func init() {
	createCmd.AddCommand(createInstanceCmd)
	createCmd.AddCommand(createKeypairCmd)
	createCmd.AddCommand(createImageCmd)
	createCmd.AddCommand(createNetworkCmd)

	createCmd.PersistentFlags().StringVar(&itemName, "name", "", "The name of the new item.")
	createCmd.MarkPersistentFlagRequired("name")

	createInstanceCmd.Flags().StringVar(&imageRef, "image", "", "The image to boot, by name or identifier.")
	createInstanceCmd.Flags().StringVar(&flavorRef, "flavor", "", "The flavor of the instance, by name or identifier.")
	createInstanceCmd.Flags().StringVar(&keyRef, "key", "", "The key-pair to install, by name or identifier.")
	createInstanceCmd.Flags().StringSliceVar(&networkRefs, "network", nil, "A network to attach, by name or identifier. Repeatable.")
	createInstanceCmd.MarkFlagRequired("image")
	createInstanceCmd.MarkFlagRequired("flavor")

	createKeypairCmd.Flags().StringVar(&publicKeyFile, "public-key-file", "", "The OpenSSH public key to upload.")
	createKeypairCmd.Flags().StringVar(&privateKeyFile, "private-key-file", "", "Where to write a generated private key.")

	createImageCmd.Flags().BoolVar(&protected, "protected", false, "Protect the image from deletion.")
}
